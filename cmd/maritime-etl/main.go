// Command maritime-etl loads the AERONET Maritime Aerosol Network archive
// into PostgreSQL.
//
// Usage:
//
//	maritime-etl import [--workers N] [--source DIR] [--intermediate DIR]
//	maritime-etl populate [--source DIR]
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var overrides config.Overrides

	root := &cobra.Command{
		Use:           "maritime-etl",
		Short:         "Ingest the AERONET Maritime Aerosol Network archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&overrides.SourceDir, "source", "", "archive directory (overrides SOURCE_DIR)")

	root.AddCommand(
		newImportCommand(&overrides),
		newPopulateCommand(&overrides),
	)
	return root
}

// loadConfig reads the environment and applies command line overrides.
func loadConfig(o *config.Overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(*o); err != nil {
		return nil, err
	}
	return cfg, nil
}
