package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"credit-intelligence/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedValue int64

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the scoring model on the current panel and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithServices(func(ctx context.Context, services *service.Service) (interface{}, error) {
			return services.ScoringService.Train(ctx)
		})
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score [company_id...]",
	Short: "Score the given companies, or every company in the panel, and persist the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]uint, 0, len(args))
		for _, arg := range args {
			id, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid company id %q: %w", arg, err)
			}
			ids = append(ids, uint(id))
		}
		return runWithServices(func(ctx context.Context, services *service.Service) (interface{}, error) {
			return services.ScoringService.ScoreAll(ctx, ids)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo companies, macro data, financials and events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithServices(func(ctx context.Context, services *service.Service) (interface{}, error) {
			return services.IngestionService.Seed(ctx, seedValue)
		})
	},
}

var ingestMacroCmd = &cobra.Command{
	Use:   "ingest-macro",
	Short: "Append a macro snapshot built from the latest FRED observations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithServices(func(ctx context.Context, services *service.Service) (interface{}, error) {
			return services.IngestionService.IngestMacro(ctx)
		})
	},
}

func init() {
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed for generated financials")
}

// runWithServices builds the application, runs fn and prints its result as JSON.
func runWithServices(fn func(ctx context.Context, services *service.Service) (interface{}, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer func() {
		if err := appDep.Close(); err != nil {
			appDep.log.Error("Failed to close app dependency", zap.Error(err))
		}
	}()

	result, err := fn(ctx, appDep.Services())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
