package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-curriculum/internal/platform/config"
	"github.com/p-n-ai/pai-curriculum/internal/report"
	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

func newTeardownCmd(cfg *config.Config) *cobra.Command {
	var (
		confirm    bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete every subject and all of its content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("teardown deletes every subject; rerun with --confirm")
			}

			engine, closeAll, err := openEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeAll()

			res, err := engine.Teardown(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range seeder.TeardownOrder() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %d\n", k, res.Deleted[k])
			}

			if reportPath == "" {
				return nil
			}
			f, err := os.Create(reportPath)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			if err := report.WriteTeardownReport(f, res); err != nil {
				_ = f.Close()
				return fmt.Errorf("write report: %w", err)
			}
			return f.Close()
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm deleting all curriculum data")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write an .xlsx teardown report to this path")
	return cmd
}
