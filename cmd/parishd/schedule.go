package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	slotCache "github.com/m04kA/ParishReservationService/internal/infra/cache/slots"
	catalogRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/catalog"
	"github.com/m04kA/ParishReservationService/internal/infra/storage/locks"
	scheduleRepo "github.com/m04kA/ParishReservationService/internal/infra/storage/schedule"
	schedulesService "github.com/m04kA/ParishReservationService/internal/service/schedules"
	"github.com/m04kA/ParishReservationService/internal/service/schedules/models"
	"github.com/m04kA/ParishReservationService/pkg/txmanager"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

// weeklyFile формат файла недельного расписания
//
//	schedules:
//	  - dayOfWeek: 1
//	    startTime: "08:00"
//	    endTime: "12:00"
type weeklyFile struct {
	Schedules []models.GeneralBlock `yaml:"schedules"`
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage chapel schedules",
	}
	cmd.AddCommand(scheduleImportCmd())
	return cmd
}

func scheduleImportCmd() *cobra.Command {
	var (
		chapelID int64
		parishID int64
		file     string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a chapel's weekly schedule with the blocks from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := readWeeklyFile(file)
			if err != nil {
				return err
			}

			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := context.Background()
			a.connectRedis(ctx)

			catalogRepository := catalogRepo.NewRepository(a.exec)
			svc := schedulesService.NewService(
				scheduleRepo.NewRepository(a.exec),
				catalogRepository,
				locks.NewLocker(a.exec),
				txmanager.NewTransactionManager(a.exec),
				slotCache.NewCache(a.redis, a.cfg.Redis.TTL()),
				a.log,
			)

			// Без --parish берем приход самой часовни
			if parishID == 0 {
				chapel, err := catalogRepository.GetChapel(ctx, chapelID)
				if err != nil {
					return fmt.Errorf("failed to load chapel %d: %w", chapelID, err)
				}
				parishID = chapel.ParishID
			}

			result, err := svc.ReplaceGeneral(ctx, &models.ReplaceGeneralRequest{
				ParishID: parishID,
				ChapelID: chapelID,
				Blocks:   blocks,
			})
			if err != nil {
				return fmt.Errorf("failed to import schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "chapel %d: %d weekly blocks imported from %s\n",
				chapelID, len(result.Schedules), file)
			return nil
		},
	}

	cmd.Flags().Int64Var(&chapelID, "chapel", 0, "Chapel ID (required)")
	cmd.Flags().Int64Var(&parishID, "parish", 0, "Parish ID that owns the chapel (defaults to the chapel's own parish)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the weekly schedule (required)")
	_ = cmd.MarkFlagRequired("chapel")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readWeeklyFile читает блоки расписания; время приводится к HH:MM
func readWeeklyFile(path string) ([]models.GeneralBlock, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file weeklyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(file.Schedules) == 0 {
		return nil, fmt.Errorf("%s contains no schedules", path)
	}

	for i, b := range file.Schedules {
		start, err := types.NewTimeStringFromString(b.StartTime.String())
		if err != nil {
			return nil, fmt.Errorf("block %d: invalid startTime: %w", i, err)
		}
		end, err := types.NewTimeStringFromString(b.EndTime.String())
		if err != nil {
			return nil, fmt.Errorf("block %d: invalid endTime: %w", i, err)
		}
		file.Schedules[i].StartTime, file.Schedules[i].EndTime = start, end
	}

	return file.Schedules, nil
}
