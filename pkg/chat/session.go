package chat

import (
	"strings"

	"github.com/google/uuid"
)

// SessionIDPrefix is the literal prefix of every generated session id.
const SessionIDPrefix = "session_"

// NewSessionID returns the prefix followed by 8 random hex characters.
// Collisions are unlikely but not ruled out.
func NewSessionID() string {
	return SessionIDPrefix + uuid.NewString()[:8]
}

// resolveSessionID keeps a supplied id verbatim unless it is blank.
func resolveSessionID(supplied string, generate func() string) string {
	if strings.TrimSpace(supplied) == "" {
		return generate()
	}
	return supplied
}
