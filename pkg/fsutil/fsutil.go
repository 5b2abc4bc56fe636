// Package fsutil has small file system helpers shared by the commands.
package fsutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CheckFolder creates base/name, or base when name is empty, if it does
// not exist yet and returns the path.
func CheckFolder(base, name string) (string, error) {
	dir := base
	if name != "" {
		dir = filepath.Join(base, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// LoadJSON decodes the JSON document at path into v
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
