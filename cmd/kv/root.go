package kv

import (
	"github.com/ValentinKolb/kvfacade/cmd/util"
	"github.com/ValentinKolb/kvfacade/lib/common"
	"github.com/ValentinKolb/kvfacade/lib/storage"
	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
)

var (
	kvStorage *storage.Storage
	kvConfig  *common.Config

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value operations",
		PersistentPreRunE:  setupStorage,
		PersistentPostRunE: teardownStorage,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add backend and storage flags to the KV command
	util.SetupStorageFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(createCmd)
	KeyValueCommands.AddCommand(eraseCmd)
	KeyValueCommands.AddCommand(resetCmd)
	KeyValueCommands.AddCommand(insertCmd)
	KeyValueCommands.AddCommand(updateCmd)
	KeyValueCommands.AddCommand(removeCmd)
	KeyValueCommands.AddCommand(findCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStorage reads the configuration and opens the storage
func setupStorage(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf, err := util.GetConfig()
	if err != nil {
		return err
	}

	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return err
	}

	kvStorage, err = util.GetStorage(conf)
	if err != nil {
		return err
	}
	kvConfig = conf

	return nil
}

// teardownStorage prints the metrics if requested and closes the storage
func teardownStorage(cmd *cobra.Command, _ []string) error {
	if kvConfig.Metrics {
		metrics.WritePrometheus(cmd.OutOrStdout(), false)
	}
	return kvStorage.Close()
}
