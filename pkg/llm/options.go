package llm

// Sampling parameters sent with every completion request.
// These are fixed and not tunable per call.
const (
	DefaultTemperature     = 0.7
	DefaultTopK            = 40
	DefaultTopP            = 0.95
	DefaultMaxOutputTokens = 1024
)

// GenerationConfig contains model inference parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`     // Creativity
	TopK            int     `json:"topK"`            // Top-k sampling
	TopP            float64 `json:"topP"`            // Nucleus sampling threshold
	MaxOutputTokens int     `json:"maxOutputTokens"` // Max tokens to generate
}

// DefaultGenerationConfig returns the fixed sampling configuration.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     DefaultTemperature,
		TopK:            DefaultTopK,
		TopP:            DefaultTopP,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}
