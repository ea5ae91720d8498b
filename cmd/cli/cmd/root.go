package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Ledgerctl is a command line tool for operating the ledgersync service",
	Long: `ledgerctl is the command-line interface for the ledgersync ingestion service.

Ledgersync keeps recurring ingestion jobs running per connected accounting
tenant: each job periodically pulls documents (invoices, bank statements)
from the provider and forwards them downstream for processing.

Common workflows:

  Start a scheduled job for a tenant:
    ledgerctl start --user <user-id> --tenant <tenant-id> --type invoice

  Stop a running job:
    ledgerctl stop <job-id>

  List active jobs:
    ledgerctl jobs

  Revoke a user's stored credential:
    ledgerctl revoke <user-id>

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    LEDGERSYNC_API_URL    API endpoint (default: http://localhost:6180)
    LEDGERSYNC_TOKEN      Operator API key for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".ledgerctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".ledgerctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "LEDGERSYNC_VARNAME"
	viper.SetEnvPrefix("LEDGERSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ledgerctl.yaml)")

	rootCmd.PersistentFlags().String("api-url", "http://localhost:6180", "Ledgersync API URL")
	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "Operator API key for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
