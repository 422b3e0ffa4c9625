package capabilities

// ModelCapabilities holds the metadata the server needs about one model:
// identity for display and the limits that bound prompt packing and output.
type ModelCapabilities struct {
	ID            string `yaml:"id" json:"id"`
	DisplayName   string `yaml:"display_name" json:"display_name"`
	Description   string `yaml:"description" json:"description"`
	ContextWindow int    `yaml:"context_window" json:"context_window"`
	MaxOutput     int    `yaml:"max_output" json:"max_output"`
}

// ProviderCapabilities is one provider's model list, ordered as defined in
// the YAML file.
type ProviderCapabilities struct {
	Provider string              `yaml:"provider" json:"provider"`
	Models   []ModelCapabilities `yaml:"models" json:"models"`
}
