package viewcfg

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Load reads the saved view from disk. Missing files return the default
// view; corrupt rotation or marker values are healed by Normalize.
func Load(path string) (ViewConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), err
	}
	var v ViewConfig
	if err := json.Unmarshal(data, &v); err != nil {
		return Default(), err
	}
	return Normalize(v), nil
}

// Save writes the view to disk, creating parent directories as needed.
func Save(path string, v ViewConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
