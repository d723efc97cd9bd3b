// Package sqlitepath resolves which SQLite database the CLI commands operate on.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvSQLitePath overrides the default database location.
	EnvSQLitePath = "CHATBOT_SQLITE_PATH"

	defaultDir  = ".chatbot"
	defaultFile = "chatbot.db"
)

// ResolveSQLitePath returns flagValue when set, then $CHATBOT_SQLITE_PATH,
// then ~/.chatbot/chatbot.db. The parent directory of the default path is
// created if missing.
func ResolveSQLitePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(EnvSQLitePath); env != "" {
		return env, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}

	dir := filepath.Join(home, defaultDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create %s: %w", dir, err)
	}

	return filepath.Join(dir, defaultFile), nil
}
