package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// readOrInitConfig reads the file at path, writing DefaultConfig's TOML
// encoding to it first if it does not yet exist, matching the way
// LoadWhitelist seeds a missing file rather than erroring.
func readOrInitConfig(path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if err == nil {
		return contents, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}
	return nil, nil
}
