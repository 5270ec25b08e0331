package yamlfs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/adapters/yamlfs"
	"github.com/gangway-io/gangway/pkg/domain"
)

const passportYAML = `id: passport
name: Passport Upload
component: document-upload
extends: base_document
required_fields:
  - document_number
fields:
  - name: document_number
    label: Passport Number
    type: text
    required: true
    validation:
      min_length: 5
outputs:
  - document_number
tags:
  - identity
`

func writeTask(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestTaskLoader_LoadTask(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "passport.yaml", passportYAML)

	loader := yamlfs.NewTaskLoader(dir)
	task, err := loader.LoadTask(context.Background(), "passport")
	require.NoError(t, err)

	assert.Equal(t, "passport", task.ID)
	assert.Equal(t, "Passport Upload", task.Name)
	assert.Equal(t, "document-upload", task.Component)
	assert.Equal(t, "base_document", task.Extends)
	assert.Equal(t, []string{"document_number"}, task.RequiredFields)
	require.Len(t, task.Fields, 1)
	assert.True(t, task.Fields[0].Required)
	require.NotNil(t, task.Fields[0].Validation)
	assert.Equal(t, 5, task.Fields[0].Validation.MinLength)
	assert.Equal(t, []string{"identity"}, task.Tags)
}

func TestTaskLoader_ResolvesExtensions(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "short.yml", "id: short\nname: Short\ncomponent: form\n")

	loader := yamlfs.NewTaskLoader(dir)
	ctx := context.Background()

	// Bare reference finds .yml; an explicit path works too.
	task, err := loader.LoadTask(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, "short", task.ID)

	task, err = loader.LoadTask(ctx, "short.yml")
	require.NoError(t, err)
	assert.Equal(t, "short", task.ID)
}

func TestTaskLoader_NotFound(t *testing.T) {
	loader := yamlfs.NewTaskLoader(t.TempDir())
	_, err := loader.LoadTask(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrDefinitionNotFound)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestTaskLoader_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "bad.yaml", "id: [unclosed")

	loader := yamlfs.NewTaskLoader(dir)
	_, err := loader.LoadTask(context.Background(), "bad")
	require.Error(t, err)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "bad", schemaErr.Ref)
}

func TestTaskLoader_MissingMandatoryFields(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "incomplete.yaml", "id: incomplete\n")

	loader := yamlfs.NewTaskLoader(dir)
	_, err := loader.LoadTask(context.Background(), "incomplete")

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Reasons, `missing mandatory field "Name"`)
	assert.Contains(t, schemaErr.Reasons, `missing mandatory field "Component"`)
}

func TestTaskLoader_CallersOwnTheResult(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "passport.yaml", passportYAML)

	loader := yamlfs.NewTaskLoader(dir, yamlfs.WithTaskCache(yamlfs.NewCache(time.Minute)))
	ctx := context.Background()

	first, err := loader.LoadTask(ctx, "passport")
	require.NoError(t, err)
	first.Name = "mutated"
	first.Fields[0].Label = "mutated"

	second, err := loader.LoadTask(ctx, "passport")
	require.NoError(t, err)
	assert.Equal(t, "Passport Upload", second.Name)
	assert.Equal(t, "Passport Number", second.Fields[0].Label)
}

func TestTaskLoader_CacheInvalidatesOnModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passport.yaml")
	writeTask(t, dir, "passport.yaml", passportYAML)

	loader := yamlfs.NewTaskLoader(dir, yamlfs.WithTaskCache(yamlfs.NewCache(time.Hour)))
	ctx := context.Background()

	first, err := loader.LoadTask(ctx, "passport")
	require.NoError(t, err)
	assert.Equal(t, "Passport Upload", first.Name)

	// Rewrite with a changed name and a mod time the cache cannot mistake
	// for the original.
	updated := []byte("id: passport\nname: Renamed\ncomponent: document-upload\n")
	require.NoError(t, os.WriteFile(path, updated, 0o644))
	newTime := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	second, err := loader.LoadTask(ctx, "passport")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", second.Name)
}
