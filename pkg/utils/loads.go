package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Load decodes the JSON file at path into a T.
func Load[T any](path string) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	err = json.NewDecoder(f).Decode(&zero)
	return zero, err
}

// Save writes v to path as indented JSON, creating parent directories.
func Save[T any](path string, v T) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
