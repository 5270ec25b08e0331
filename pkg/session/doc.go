/*
Package session serializes access to per-entity onboarding state.

The EntityStore adapters guarantee atomic writes but deliberately do not
serialize concurrent writers to the same entity (last writer wins). Manager
closes that gap: it keeps a reference-counted mutex per entity ID, and can
additionally coordinate across replicas through a DistributedLocker. Every
read-modify-write against shared state should go through Manager.WithLock.
*/
package session
