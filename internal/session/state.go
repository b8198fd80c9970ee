package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	stateDir  = ".pravnik"
	stateFile = "current_session"
)

// StateFilePath returns the path to the current-session state file,
// creating ~/.pravnik if needed. The CLI uses it to keep one conversation
// going across invocations.
func StateFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(homeDir, stateDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating state directory: %w", err)
	}
	return filepath.Join(dir, stateFile), nil
}

// LoadCurrentSessionID loads the active session ID from the state file.
// A missing or empty file returns (nil, nil): no current session is not
// an error.
func LoadCurrentSessionID() (*uuid.UUID, error) {
	path, err := StateFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid session id in state file: %w", err)
	}
	return &id, nil
}

// SaveCurrentSessionID marks sessionID as the active CLI session.
func SaveCurrentSessionID(sessionID uuid.UUID) error {
	path, err := StateFilePath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sessionID.String()), 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// ClearCurrentSessionID removes the state file. Idempotent: clearing when
// no current session exists is not an error.
func ClearCurrentSessionID() error {
	path, err := StateFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state file: %w", err)
	}
	return nil
}
