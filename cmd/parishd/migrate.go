package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/ParishReservationService/migrations"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect the embedded database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(migrations.CommandUp), string(migrations.CommandDown), string(migrations.CommandStatus)},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			command := migrations.Command(args[0])
			a.log.Info("Running migrations: %s", command)

			if err := migrations.Run(a.db, command); err != nil {
				a.log.Error("Migrations failed: %v", err)
				return fmt.Errorf("migrate %s: %w", command, err)
			}

			a.log.Info("Migrations finished: %s", command)
			return nil
		},
	}
}
