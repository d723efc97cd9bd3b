package api

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidator checks ChatRequest bodies against the configured limits.
type requestValidator struct {
	validate           *validator.Validate
	maxMessageLength   int
	maxSessionIDLength int
}

func newRequestValidator(maxMessageLength, maxSessionIDLength int) *requestValidator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validateNotBlank)

	return &requestValidator{
		validate:           v,
		maxMessageLength:   maxMessageLength,
		maxSessionIDLength: maxSessionIDLength,
	}
}

// validateNotBlank rejects strings that are empty after trimming whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Check returns the user-facing message for the first rule the request breaks,
// or "" when the request is valid. Lengths count characters, not bytes.
func (v *requestValidator) Check(req ChatRequest) string {
	if err := v.validate.Var(req.UserMessage, "notblank"); err != nil {
		return "User message cannot be empty"
	}
	if err := v.validate.Var(req.UserMessage, fmt.Sprintf("max=%d", v.maxMessageLength)); err != nil {
		return fmt.Sprintf("User message cannot exceed %d characters", v.maxMessageLength)
	}
	if err := v.validate.Var(req.SessionID, fmt.Sprintf("max=%d", v.maxSessionIDLength)); err != nil {
		return fmt.Sprintf("Session ID cannot exceed %d characters", v.maxSessionIDLength)
	}
	return ""
}
