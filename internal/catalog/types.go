package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tier selects which configured model serves an operation
type Tier string

const (
	TierSmart Tier = "smart"
	TierFast  Tier = "fast"
)

// Template is a named, versioned block of instruction text
type Template struct {
	// Name is the map key from the YAML file (set during loading)
	Name    string `yaml:"-" json:"name"`
	Version int    `yaml:"version" json:"version"`
	// StoreID is the id of the remote override row, if the template can be overridden
	StoreID string `yaml:"store_id,omitempty" json:"store_id,omitempty"`
	Text    string `yaml:"text" json:"text"`
}

// OperationProfile holds the model settings for one gateway operation
type OperationProfile struct {
	Name      string `yaml:"-" json:"name"`
	Tier      Tier   `yaml:"tier" json:"tier"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// UnmarshalYAML validates the tier while decoding
func (p *OperationProfile) UnmarshalYAML(node *yaml.Node) error {
	type plain OperationProfile
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch raw.Tier {
	case TierSmart, TierFast:
	default:
		return fmt.Errorf("line %d: unknown tier %q", node.Line, raw.Tier)
	}
	if raw.MaxTokens <= 0 {
		return fmt.Errorf("line %d: max_tokens must be positive", node.Line)
	}
	*p = OperationProfile(raw)
	return nil
}

// templateFile mirrors config/templates.yaml
type templateFile struct {
	Persona   Template            `yaml:"persona"`
	Summarize Template            `yaml:"summarize"`
	Roles     map[string]Template `yaml:"roles"`
	Schemas   map[string]Template `yaml:"schemas"`
}

// operationFile mirrors config/operations.yaml
type operationFile struct {
	Operations map[string]OperationProfile `yaml:"operations"`
}
