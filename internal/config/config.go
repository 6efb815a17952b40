// Package config layers smig's configuration: flags override environment
// variables (SMIG_*), which override smig.yaml in the working directory,
// which overrides built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFileName is the per-project configuration file.
const ConfigFileName = "smig.yaml"

// DefaultDatabase is the database file the original bot deployment used.
const DefaultDatabase = "bot_database.db"

// DefaultTable is the table the built-in migrations target.
const DefaultTable = "users"

// Initialize sets up the viper singleton. Called once from the CLI's init.
// A missing smig.yaml is fine; any other read error is reported.
func Initialize() error {
	viper.SetConfigName("smig")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SMIG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("database", DefaultDatabase)
	viper.SetDefault("table", DefaultTable)
	viper.SetDefault("script", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}
	return nil
}

// Database returns the configured database path.
func Database() string {
	return viper.GetString("database")
}

// Table returns the default target table.
func Table() string {
	return viper.GetString("table")
}

// Script returns the default migration script path, empty if none.
func Script() string {
	return viper.GetString("script")
}
