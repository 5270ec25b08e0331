package yamlfs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/adapters/yamlfs"
	"github.com/gangway-io/gangway/pkg/domain"
)

const kycWorkflowYAML = `id: kyc-default
name: Default KYC
version: "1.0"
applies_to:
  entity_type: individual
  jurisdictions:
    - US
    - CA
stages:
  - id: identity
    name: Identity
steps:
  - id: collect_email
    stage: identity
    task: email_task
    next:
      conditions:
        - if: input.risk_score > 70
          goto: manual_review
      default: complete
  - id: manual_review
    stage: identity
    task: review_task
    next:
      default: complete
`

func writeWorkflow(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestWorkflowLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "kyc.yaml", kycWorkflowYAML)
	writeWorkflow(t, dir, "business.yaml", `id: kyb
name: Business KYC
applies_to:
  entity_type: business
steps:
  - id: company_info
    task: company_task
    next:
      default: complete
`)
	// Non-YAML files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644))

	loader := yamlfs.NewWorkflowLoader(dir)
	defs, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)

	// File-name order: business.yaml before kyc.yaml.
	assert.Equal(t, "kyb", defs[0].ID)
	assert.Equal(t, "kyc-default", defs[1].ID)

	kyc := defs[1]
	assert.Equal(t, "1.0", kyc.Version)
	require.NotNil(t, kyc.AppliesTo)
	assert.Equal(t, "individual", kyc.AppliesTo.EntityType)
	assert.Equal(t, []string{"US", "CA"}, kyc.AppliesTo.Jurisdictions)
	require.Len(t, kyc.Steps, 2)
	assert.Equal(t, "collect_email", kyc.Steps[0].ID)
	require.Len(t, kyc.Steps[0].Next.Conditions, 1)
	assert.Equal(t, "input.risk_score > 70", kyc.Steps[0].Next.Conditions[0].If)
	assert.Equal(t, "manual_review", kyc.Steps[0].Next.Conditions[0].Goto)
	assert.Equal(t, domain.TerminalStep, kyc.Steps[0].Next.Default)
}

func TestWorkflowLoader_MissingDirectoryIsEmpty(t *testing.T) {
	loader := yamlfs.NewWorkflowLoader(filepath.Join(t.TempDir(), "never-created"))
	defs, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, defs)
	assert.NotNil(t, defs)
}

func TestWorkflowLoader_MalformedDefinitionAborts(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "good.yaml", kycWorkflowYAML)
	writeWorkflow(t, dir, "broken.yaml", "id: broken\nname: Broken\n")

	loader := yamlfs.NewWorkflowLoader(dir)
	_, err := loader.LoadAll(context.Background())
	require.Error(t, err)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Reasons, `field "Steps" must not be empty`)
}
