package catalog

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"bruce/internal/domain"
	"bruce/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Operation names, as keyed in config/operations.yaml
const (
	OpAsk              = "ask"
	OpSummarize        = "summarize_incident"
	OpGenerateSQL      = "generate_sql"
	OpCheckSuggestions = "check_suggestions"
)

// Catalog holds the compiled-in instruction templates and operation profiles.
// It is read-only after New returns.
type Catalog struct {
	persona    Template
	summarize  Template
	roles      map[models.Role]Template
	schemas    map[models.Target]Template
	operations map[string]OperationProfile
}

// New loads the embedded YAML files and checks that every role, target
// and operation the service uses is present.
func New() (*Catalog, error) {
	var tf templateFile
	if err := loadFile("config/templates.yaml", &tf); err != nil {
		return nil, err
	}
	var of operationFile
	if err := loadFile("config/operations.yaml", &of); err != nil {
		return nil, err
	}

	c := &Catalog{
		persona:    named("persona", tf.Persona),
		summarize:  named("summarize", tf.Summarize),
		roles:      make(map[models.Role]Template),
		schemas:    make(map[models.Target]Template),
		operations: make(map[string]OperationProfile),
	}

	for _, role := range models.Roles() {
		tmpl, ok := tf.Roles[string(role)]
		if !ok || strings.TrimSpace(tmpl.Text) == "" {
			return nil, fmt.Errorf("templates.yaml: missing role %q", role)
		}
		if tmpl.StoreID == "" {
			return nil, fmt.Errorf("templates.yaml: role %q has no store_id", role)
		}
		c.roles[role] = named(string(role), tmpl)
	}

	for _, target := range models.Targets() {
		tmpl, ok := tf.Schemas[string(target)]
		if !ok || strings.TrimSpace(tmpl.Text) == "" {
			return nil, fmt.Errorf("templates.yaml: missing schema %q", target)
		}
		c.schemas[target] = named(string(target), tmpl)
	}

	for _, op := range []string{OpAsk, OpSummarize, OpGenerateSQL, OpCheckSuggestions} {
		profile, ok := of.Operations[op]
		if !ok {
			return nil, fmt.Errorf("operations.yaml: missing operation %q", op)
		}
		profile.Name = op
		c.operations[op] = profile
	}

	if c.persona.Text == "" || c.summarize.Text == "" {
		return nil, fmt.Errorf("templates.yaml: persona and summarize are required")
	}

	return c, nil
}

// MustNew is New for package-level fixtures and tools; it panics on a broken embed.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

func loadFile(name string, dest interface{}) error {
	data, err := configFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

func named(name string, t Template) Template {
	t.Name = name
	t.Text = strings.TrimSpace(t.Text)
	return t
}

// Role returns the default template for a prompt role
func (c *Catalog) Role(role models.Role) (Template, bool) {
	t, ok := c.roles[role]
	return t, ok
}

// Default returns the compiled-in text for a role, or "" for an unknown role
func (c *Catalog) Default(role models.Role) string {
	return c.roles[role].Text
}

// StoreID returns the remote override id for a role
func (c *Catalog) StoreID(role models.Role) string {
	return c.roles[role].StoreID
}

// Schema returns the schema description grounding SQL generation for target
func (c *Catalog) Schema(target models.Target) (Template, error) {
	t, ok := c.schemas[target]
	if !ok {
		return Template{}, fmt.Errorf("%w: unknown target %q", domain.ErrValidation, target)
	}
	return t, nil
}

// Persona is the last-resort system instruction for free-form questions
func (c *Catalog) Persona() string {
	return c.persona.Text
}

// SummarizeInstruction is the fixed instruction for incident titles
func (c *Catalog) SummarizeInstruction() string {
	return c.summarize.Text
}

// Operation returns the model profile for a gateway operation
func (c *Catalog) Operation(name string) (OperationProfile, error) {
	p, ok := c.operations[name]
	if !ok {
		return OperationProfile{}, fmt.Errorf("unknown operation %q", name)
	}
	return p, nil
}
