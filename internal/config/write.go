package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Bindery configuration
# Top-level values can be overridden with BINDERY_* environment variables,
# e.g. export BINDERY_LOG_LEVEL=debug

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
