package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-curriculum/internal/curriculum"
	"github.com/p-n-ai/pai-curriculum/internal/platform/config"
	"github.com/p-n-ai/pai-curriculum/internal/report"
	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

type syncOptions struct {
	dryRun    bool
	reportDir string
}

func newSyncCmd(cfg *config.Config) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync PATH",
		Short: "Synchronize a subject document, or every document under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := curriculum.Load(args[0], cfg.Seed.MaxDocumentBytes)
			if err != nil {
				return err
			}

			if opts.dryRun {
				for _, d := range docs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s is valid\n", d.Path, d.Document.Slug)
				}
				return nil
			}

			engine, closeAll, err := openEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeAll()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, d := range docs {
				res, err := engine.Synchronize(cmd.Context(), d.Document)
				if err != nil {
					return fmt.Errorf("%s: %w", d.Path, err)
				}
				if err := enc.Encode(res); err != nil {
					return err
				}
				if opts.reportDir != "" {
					if err := writeSeedReport(opts.reportDir, d.Document.Slug, res); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate documents without touching the database")
	cmd.Flags().StringVar(&opts.reportDir, "report", "", "Directory to write one <subject>-seed.xlsx report per document")
	return cmd
}

func writeSeedReport(dir, slug string, res *seeder.SeedResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, slug+"-seed.xlsx")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteSeedReport(f, res); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}
