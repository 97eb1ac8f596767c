package loam

// SolutionMetadata is the frontmatter of an archived solution document.
// It uses "mapstructure" tags to match the YAML keys.
type SolutionMetadata struct {
	ID        string `json:"id" mapstructure:"id"`
	BoardID   string `json:"board_id,omitempty" mapstructure:"board_id"`
	Provider  string `json:"provider" mapstructure:"provider"`
	Model     string `json:"model" mapstructure:"model"`
	Prompt    string `json:"prompt" mapstructure:"prompt"`
	CreatedAt string `json:"created_at" mapstructure:"created_at"` // RFC 3339
	Image     string `json:"image,omitempty" mapstructure:"image"`  // path relative to the archive root
}
