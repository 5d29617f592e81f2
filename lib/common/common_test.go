package common

import (
	"github.com/lni/dragonboat/v4/logger"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Backend:         "sqlite",
		Mode:            "suspended",
		DataDir:         "/tmp/kvf",
		ProtectedFields: []string{"password"},
		LogLevel:        "info",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"MemoryWithoutDataDir", func(c *Config) { c.Backend = "memory"; c.DataDir = "" }, false},
		{"UnknownBackend", func(c *Config) { c.Backend = "redis" }, true},
		{"UnknownMode", func(c *Config) { c.Mode = "eventually" }, true},
		{"MissingDataDir", func(c *Config) { c.DataDir = "" }, true},
		{"EmptyProtectedField", func(c *Config) { c.ProtectedFields = []string{""} }, true},
		{"NoProtectedFields", func(c *Config) { c.ProtectedFields = nil }, false},
		{"UnknownLogLevel", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)

			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	c := validConfig()
	out := c.String()

	for _, want := range []string{"BACKEND", "sqlite", "suspended", "/tmp/kvf", "password", "LOGGING"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in config output:\n%s", want, out)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}

	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}

	if _, err := ParseLogLevel("loud"); err == nil {
		t.Errorf("Expected an error for an unknown level")
	}
}

func TestLoggerLevel(t *testing.T) {
	var sb strings.Builder
	l := newLogger("test", &sb)

	l.SetLevel(logger.WARNING)
	l.Debugf("hidden")
	l.Infof("hidden")
	l.Warningf("shown %d", 1)
	l.Errorf("shown %d", 2)

	out := sb.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug and info messages to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN  [test   ] shown 1") {
		t.Errorf("Expected a padded warning line, got %q", out)
	}
	if !strings.Contains(out, "ERROR [test   ] shown 2") {
		t.Errorf("Expected a padded error line, got %q", out)
	}
}

func TestLoggerPanicf(t *testing.T) {
	var sb strings.Builder
	l := newLogger("storage", &sb)
	l.SetLevel(logger.ERROR)

	defer func() {
		if r := recover(); r != "storage: broken 7" {
			t.Errorf("Expected panic with the message, got %v", r)
		}
		if !strings.Contains(sb.String(), "PANIC [storage] broken 7") {
			t.Errorf("Expected the message to be written before panicking, got %q", sb.String())
		}
	}()
	l.Panicf("broken %d", 7)
	t.Errorf("Panicf returned")
}
