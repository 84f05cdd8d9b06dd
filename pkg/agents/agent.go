// Package agents manages chat agents stored on the backend
package agents

// Tool is one capability enabled on an agent
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Definition  map[string]any `json:"definition"`
	Enabled     bool           `json:"enabled"`
	Type        string         `json:"type"`
}

// Settings configures how an agent answers
type Settings struct {
	ModelSelection    []string `json:"model_selection"`
	Temperature       float64  `json:"temperature"`
	MaxTokens         int      `json:"max_tokens"`
	Tools             []Tool   `json:"tools"`
	ExtraInstructions string   `json:"extra_instructions"`
}

type Agent struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	CreatedAt     string   `json:"created_at"`
	LastUpdatedAt string   `json:"last_updated_at"`
	ETag          string   `json:"etag"`
	Settings      Settings `json:"settings"`
}

// EnabledTools returns the tools that are switched on
func (a *Agent) EnabledTools() []Tool {
	var out []Tool
	for _, t := range a.Settings.Tools {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}
