package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"bruce/internal/domain"
	"bruce/internal/domain/models"
)

func TestNewLoadsEmbeddedFiles(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	for _, role := range models.Roles() {
		assert.NotEmpty(t, c.Default(role), "default for %s", role)
		assert.True(t, strings.HasPrefix(c.StoreID(role), "p-bruce-"), "store id for %s", role)
	}
	assert.Equal(t, "You are a helpful IT assistant for Oriol Healthcare.", c.Persona())
	assert.Contains(t, c.SummarizeInstruction(), "5-8 words")
}

func TestStoreIDs(t *testing.T) {
	c := MustNew()

	assert.Equal(t, "p-bruce-ask", c.StoreID(models.RoleAsk))
	assert.Equal(t, "p-bruce-sql", c.StoreID(models.RoleSQL))
	assert.Equal(t, "p-bruce-suggestions", c.StoreID(models.RoleSuggestions))
	assert.Empty(t, c.StoreID(models.Role("unknown")))
}

func TestSchemaSelection(t *testing.T) {
	c := MustNew()

	tests := []struct {
		target  models.Target
		want    string
		notWant string
	}{
		{target: models.TargetTasks, want: "Table: incidents", notWant: "Table: assets"},
		{target: models.TargetAssets, want: "Table: assets", notWant: "Table: incidents"},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			schema, err := c.Schema(tt.target)
			require.NoError(t, err)
			assert.Equal(t, string(tt.target), schema.Name)
			assert.Contains(t, schema.Text, tt.want)
			assert.NotContains(t, schema.Text, tt.notWant)
		})
	}

	_, err := c.Schema(models.Target("printers"))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSQLDefaultCarriesScopingRules(t *testing.T) {
	text := MustNew().Default(models.RoleSQL)

	assert.Contains(t, text, "WHERE user_id = '{user_id}'")
	assert.Contains(t, text, "LIMIT 50")
	assert.Contains(t, text, "Use ONLY SELECT")
}

func TestOperationProfiles(t *testing.T) {
	c := MustNew()

	tests := []struct {
		op        string
		tier      Tier
		maxTokens int
	}{
		{OpAsk, TierSmart, 1024},
		{OpSummarize, TierFast, 30},
		{OpGenerateSQL, TierSmart, 512},
		{OpCheckSuggestions, TierSmart, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			p, err := c.Operation(tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.op, p.Name)
			assert.Equal(t, tt.tier, p.Tier)
			assert.Equal(t, tt.maxTokens, p.MaxTokens)
		})
	}

	_, err := c.Operation("translate")
	assert.Error(t, err)
}

func TestOperationProfileRejectsBadTier(t *testing.T) {
	var of operationFile
	err := yaml.Unmarshal([]byte("operations:\n  ask:\n    tier: huge\n    max_tokens: 10\n"), &of)
	assert.ErrorContains(t, err, `unknown tier "huge"`)

	err = yaml.Unmarshal([]byte("operations:\n  ask:\n    tier: fast\n    max_tokens: 0\n"), &of)
	assert.ErrorContains(t, err, "max_tokens must be positive")
}
