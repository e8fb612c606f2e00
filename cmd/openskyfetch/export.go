// cmd/openskyfetch/export.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"openskyfetch/config"
	"openskyfetch/database"
)

type exportOptions struct {
	dbPath            string
	format            string
	departureAirports string
	arrivalAirports   string
	startDate         string
	endDate           string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <output-file>",
		Short: "Export flight data to a CSV or Parquet file with optional filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.dbPath, "db-path", "d", "", "path to the database file (default flights.db)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format: csv or parquet")
	cmd.Flags().StringVar(&opts.departureAirports, "from", "", "filter by departure airport codes (comma-separated)")
	cmd.Flags().StringVar(&opts.arrivalAirports, "to", "", "filter by arrival airport codes (comma-separated)")
	cmd.Flags().StringVarP(&opts.startDate, "start-date", "s", "", "filter by start date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.endDate, "end-date", "e", "", "filter by end date (YYYY-MM-DD)")

	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions, outputPath string) error {
	log := root.logger()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}

	format, err := database.ParseExportFormat(opts.format)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Database.Path); err != nil {
		return fmt.Errorf("database file %s does not exist", cfg.Database.Path)
	}

	filters := database.ExportFilters{}

	if opts.departureAirports != "" {
		valid, invalid := config.ParseAirports(opts.departureAirports)
		for _, code := range invalid {
			log.Warn().Str("airport", code).Msg("invalid departure airport code, skipping")
		}
		if len(valid) == 0 {
			return fmt.Errorf("%w: no valid departure airport codes provided", config.ErrValidation)
		}
		filters.DepartureAirports = valid
	}
	if opts.arrivalAirports != "" {
		valid, invalid := config.ParseAirports(opts.arrivalAirports)
		for _, code := range invalid {
			log.Warn().Str("airport", code).Msg("invalid arrival airport code, skipping")
		}
		if len(valid) == 0 {
			return fmt.Errorf("%w: no valid arrival airport codes provided", config.ErrValidation)
		}
		filters.ArrivalAirports = valid
	}

	var start, end config.DateArg
	if opts.startDate != "" {
		if start, err = config.ParseDateArg(opts.startDate); err != nil {
			return err
		}
		filters.StartDate = &start.Day
	}
	if opts.endDate != "" {
		if end, err = config.ParseDateArg(opts.endDate); err != nil {
			return err
		}
		filters.EndDate = &end.Day
	}
	if opts.startDate != "" && opts.endDate != "" {
		if err := config.ValidateRange(start, end); err != nil {
			return err
		}
	}

	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info().Str("output", outputPath).Str("format", string(format)).Msg("exporting flights")

	rows, err := store.Export(cmd.Context(), outputPath, format, filters)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	log.Info().Int("rows", rows).Msg("export complete")
	if !root.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", rows, outputPath)
	}
	return nil
}
