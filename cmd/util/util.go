package util

import (
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/ValentinKolb/kvfacade/lib/backend/factory"
	"github.com/ValentinKolb/kvfacade/lib/common"
	"github.com/ValentinKolb/kvfacade/lib/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStorageFlags adds the backend and storage flags to a command
func SetupStorageFlags(cmd *cobra.Command) {
	key := "backend"
	cmd.PersistentFlags().String(key, "memory", WrapString(fmt.Sprintf("The storage backend to use (%s)", strings.Join(factory.Names, ", "))))

	key = "mode"
	cmd.PersistentFlags().String(key, "immediate", WrapString("The execution mode of the backend: immediate runs every operation on the calling goroutine, suspended runs it on a background worker"))

	key = "data-dir"
	cmd.PersistentFlags().String(key, "./kvf-data", WrapString("The directory for the files of persistent backends (file, sqlite, badger)"))

	key = "protected-fields"
	cmd.PersistentFlags().StringSlice(key, []string{"password"}, WrapString("Record fields that update keeps when the new record omits them (comma separated)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("The log level (debug, info, warn, error)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the operation metrics in Prometheus format after the command"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("kvf")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetConfig reads and validates the configuration from viper
func GetConfig() (*common.Config, error) {
	conf := &common.Config{
		Backend:         viper.GetString("backend"),
		Mode:            viper.GetString("mode"),
		DataDir:         viper.GetString("data-dir"),
		ProtectedFields: viper.GetStringSlice("protected-fields"),
		LogLevel:        viper.GetString("log-level"),
		Metrics:         viper.GetBool("metrics"),
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// GetStorage opens the configured backend and creates the storage on top of it
func GetStorage(conf *common.Config) (*storage.Storage, error) {
	mode, err := backend.ParseMode(conf.Mode)
	if err != nil {
		return nil, err
	}

	adapter, err := factory.New(conf.Backend, mode, conf.DataDir)
	if err != nil {
		return nil, err
	}

	opts := storage.DefaultOptions()
	opts.ProtectedFields = conf.ProtectedFields

	return storage.New(adapter, opts), nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
