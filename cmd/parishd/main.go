package main

import (
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "parishd",
		Short: "Parish reservation service",
		Long:  `Availability and booking engine for parish chapels: HTTP API, schema migrations and schedule tooling.`,
		// Без подкоманды запускается HTTP сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "Path to the TOML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
