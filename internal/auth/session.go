package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pickbetter/labelscan/internal/models"
)

// SaveSession writes the session to path, creating the parent
// directory if needed. File mode keeps tokens user-readable only.
func SaveSession(path string, session *Session) error {
	if err := models.EnsureParentDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// LoadSession reads the stored session. A missing file means nobody
// is signed in and is not an error; the session comes back nil.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return &session, nil
}

// ClearSession signs the user out locally by removing the stored
// session. The user's persisted history survives, keyed by user id.
func ClearSession(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
