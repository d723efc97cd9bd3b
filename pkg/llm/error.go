package llm

import "fmt"

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned %d", e.StatusCode)
	}

	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}
