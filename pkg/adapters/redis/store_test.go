package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/adapters/redis"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	ports.RunEntityStoreContract(t, redis.NewStore(client))
}

func TestStore_TTLExpiresRecords(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewStore(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	_, err := store.Initialize(ctx, "user-ttl", "kyc-default", "collect_email")
	require.NoError(t, err)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "user-ttl")

	// Past the TTL the record is gone and List prunes the index entry.
	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, "user-ttl")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "user-ttl")
}

func TestStore_CorruptedRecordTreatedAsNotFound(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewStore(client)

	require.NoError(t, mr.Set("gangway:entity:broken", "{not json"))
	_, err := store.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestStore_HandWrittenNullCollections(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewStore(client)

	record := `{"entity_id":"user-1","workflow_id":"kyc-default","current_step_id":"collect_email","inputs":null,"completed_steps":null}`
	require.NoError(t, mr.Set("gangway:entity:user-1", record))

	loaded, err := store.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Inputs)
	loaded.Inputs["email"] = "jo@example.com"
	assert.NotNil(t, loaded.CompletedSteps)
}

func TestStore_CustomPrefixIsolates(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	a := redis.NewStore(client, redis.WithPrefix("tenant-a:"))
	b := redis.NewStore(client, redis.WithPrefix("tenant-b:"))

	_, err := a.Initialize(ctx, "user-1", "kyc-default", "collect_email")
	require.NoError(t, err)

	_, err = b.Load(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)

	// Same ID under a different prefix does not conflict.
	_, err = b.Initialize(ctx, "user-1", "kyc-default", "collect_email")
	assert.NoError(t, err)
}
