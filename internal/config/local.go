package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is smig.yaml read directly from a specific directory, bypassing
// the viper singleton. Needed when inspecting a project directory other than
// the one viper was initialized in, or before viper is initialized.
type LocalConfig struct {
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	Script   string `yaml:"script"`
}

// LoadLocal reads and parses smig.yaml from dir.
// Returns an empty LocalConfig (not nil) if the file doesn't exist or can't
// be parsed.
func LoadLocal(dir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName)) // #nosec G304 - dir comes from the operator
	if err != nil {
		return &LocalConfig{}
	}
	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}
