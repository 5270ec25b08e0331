/*
Package ports defines the driven-port interfaces of the Gangway engine.

Following Hexagonal Architecture, the core (compiler, transition engine,
session manager) depends only on these interfaces; adapters under
pkg/adapters provide the concrete backends (filesystem, memory, redis).

The package also ships RunEntityStoreContract, a reusable test suite that
every EntityStore implementation is expected to pass.
*/
package ports
