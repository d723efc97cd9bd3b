package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// FallbackResponse is returned when the response envelope lacks the
	// candidates[0].content.parts[0] path.
	FallbackResponse = "Sorry, I couldn't generate a response at this time."

	// FallbackEmptyText is returned when the first part carries no text.
	FallbackEmptyText = "Sorry, I couldn't generate a response."
)

// ExtractText pulls the generated text out of a generateContent response body
// by walking candidates[0].content.parts[0].text.
//
// A body that is not valid JSON is an error. A valid body that is missing any
// node on the path, or where a list node is not a list or is empty, yields one
// of the fallback strings instead.
func ExtractText(body []byte) (string, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	envelope, ok := root.(map[string]any)
	if !ok {
		return FallbackResponse, nil
	}

	candidate, ok := firstObject(envelope["candidates"])
	if !ok {
		return FallbackResponse, nil
	}

	content, ok := candidate["content"].(map[string]any)
	if !ok {
		return FallbackResponse, nil
	}

	part, ok := firstObject(content["parts"])
	if !ok {
		return FallbackResponse, nil
	}

	text, ok := part["text"].(string)
	if !ok {
		return FallbackEmptyText, nil
	}

	return strings.TrimSpace(text), nil
}

// firstObject returns the first element of v when v is a non-empty list whose
// first element is an object.
func firstObject(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	obj, ok := list[0].(map[string]any)
	return obj, ok
}
