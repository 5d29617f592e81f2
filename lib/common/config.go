package common

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"strings"
)

var configValidate = validator.New()

// Config holds all configuration parameters of the CLI.
type Config struct {
	// Backend is the name of the storage backend
	Backend string `validate:"oneof=memory file sqlite badger"`
	// Mode is the execution mode of the backend (immediate or suspended)
	Mode string `validate:"oneof=immediate sync suspended async"`
	// DataDir holds the files of persistent backends
	DataDir string `validate:"required_unless=Backend memory"`

	// ProtectedFields are kept by update when the new record omits them
	ProtectedFields []string `validate:"dive,required"`

	// Logging configuration
	LogLevel string `validate:"oneof=debug info warn warning error"`

	// Metrics prints the operation metrics after each command
	Metrics bool
}

// Validate checks the configuration against its constraints
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Backend settings
	addSection("Backend")
	addField("Backend", c.Backend)
	addField("Mode", c.Mode)
	if c.Backend != "memory" {
		addField("Data Directory", c.DataDir)
	}

	// Storage settings
	addSection("Storage")
	addField("Protected Fields", strings.Join(c.ProtectedFields, ", "))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Metrics", fmt.Sprintf("%t", c.Metrics))

	return sb.String()
}
