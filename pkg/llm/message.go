package llm

// Part is a single piece of a content block. Only text parts are produced.
type Part struct {
	Text string `json:"text"`
}

// Content is one entry of the "contents" list sent to the model.
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"; omitted for single-prompt requests
	Parts []Part `json:"parts"`
}

// NewTextContent wraps a plain-text prompt in a single-part content block.
func NewTextContent(text string) Content {
	return Content{
		Parts: []Part{{Text: text}},
	}
}
