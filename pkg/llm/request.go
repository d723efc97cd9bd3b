package llm

// GenerateRequest represents a generateContent request (Gemini-compatible).
type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// NewGenerateRequest builds a single-turn request for the given prompt.
func NewGenerateRequest(prompt string) *GenerateRequest {
	return &GenerateRequest{
		Contents:         []Content{NewTextContent(prompt)},
		GenerationConfig: DefaultGenerationConfig(),
	}
}
