package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/adapters/file"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

func TestStore_Contract(t *testing.T) {
	ports.RunEntityStoreContract(t, file.New(t.TempDir()))
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := file.New(dir)
	state, err := first.Initialize(ctx, "user-1", "kyc-default", "collect_email")
	require.NoError(t, err)
	state.Inputs["email"] = "jo@example.com"
	require.NoError(t, first.Save(ctx, "user-1", state))

	// A fresh store over the same directory sees the record.
	second := file.New(dir)
	loaded, err := second.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", loaded.Inputs["email"])
	assert.Equal(t, "kyc-default", loaded.WorkflowID)
}

func TestStore_CorruptedFileTreatedAsNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	store := file.New(dir)
	_, err := store.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestStore_HandAuthoredNullCollections(t *testing.T) {
	dir := t.TempDir()
	record := `{"entity_id":"user-1","workflow_id":"kyc-default","current_step_id":"collect_email","inputs":null,"completed_steps":null,"completed_stages":null}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user-1.json"), []byte(record), 0o644))

	store := file.New(dir)
	loaded, err := store.Load(context.Background(), "user-1")
	require.NoError(t, err)

	// Callers merge submitted inputs straight into the map.
	require.NotNil(t, loaded.Inputs)
	loaded.Inputs["email"] = "jo@example.com"
	assert.NotNil(t, loaded.CompletedSteps)
	assert.NotNil(t, loaded.CompletedStages)
}

func TestStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := file.New(dir)
	_, err := store.Initialize(ctx, "user-1", "kyc-default", "collect_email")
	require.NoError(t, err)

	// Leftover temp files, directories and non-JSON files are not records.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-user-2-1234.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, ids)
}

func TestStore_ListAbsentDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "never-created"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestStore_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := file.New(dir)
	state, err := store.Initialize(ctx, "user-1", "kyc-default", "collect_email")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, "user-1", state))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1.json", entries[0].Name())
}

func TestStore_EmptyEntityIDRejected(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	_, err := store.Initialize(ctx, "", "wf", "step")
	assert.Error(t, err)
	_, err = store.Load(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, ""))
}
