// cmd/openskyfetch/flights.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"openskyfetch/client"
	"openskyfetch/config"
	"openskyfetch/database"
	"openskyfetch/fetcher"
	"openskyfetch/models"
)

type fetchOptions struct {
	airports       string
	startDate      string
	endDate        string
	dbPath         string
	clientID       string
	clientSecret   string
	maxConcurrent  int
	rateLimitDelay float64
	noSkipExisting bool
}

func newFetchCmd(root *rootOptions, kind models.Kind) *cobra.Command {
	opts := &fetchOptions{}

	var short string
	if kind == models.KindDeparture {
		short = "Fetch departure flights for airports over a date range"
	} else {
		short = "Fetch destination (arrival) flights for airports over a date range"
	}

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, root, opts, kind)
		},
	}

	cmd.Flags().StringVarP(&opts.airports, "airports", "a", "", "comma-separated ICAO airport codes (e.g. KMCO,KJFK,KLAX)")
	cmd.Flags().StringVarP(&opts.startDate, "start-date", "s", "", "start date/datetime (YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS')")
	cmd.Flags().StringVarP(&opts.endDate, "end-date", "e", "", "end date/datetime (YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS')")
	cmd.Flags().StringVarP(&opts.dbPath, "db-path", "d", "", "path to the database file (default flights.db)")
	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "OAuth client ID (or set "+config.EnvClientID+")")
	cmd.Flags().StringVar(&opts.clientSecret, "client-secret", "", "OAuth client secret (or set "+config.EnvClientSecret+")")
	cmd.Flags().IntVarP(&opts.maxConcurrent, "max-concurrent", "c", 0, "maximum concurrent requests (default 5)")
	cmd.Flags().Float64VarP(&opts.rateLimitDelay, "rate-limit-delay", "r", 0, "minimum delay between requests in seconds (default 0.5)")
	cmd.Flags().BoolVar(&opts.noSkipExisting, "no-skip-existing", false, "re-fetch data even if it already exists in the database")

	_ = cmd.MarkFlagRequired("airports")
	_ = cmd.MarkFlagRequired("start-date")
	_ = cmd.MarkFlagRequired("end-date")

	return cmd
}

func runFetch(cmd *cobra.Command, root *rootOptions, opts *fetchOptions, kind models.Kind) error {
	log := root.logger()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.maxConcurrent > 0 {
		cfg.Fetch.MaxConcurrent = opts.maxConcurrent
	}
	if opts.rateLimitDelay > 0 {
		cfg.Fetch.RateLimitDelay = time.Duration(opts.rateLimitDelay * float64(time.Second))
	}

	creds, err := config.LoadCredentials(opts.clientID, opts.clientSecret)
	if err != nil {
		return err
	}

	valid, invalid := config.ParseAirports(opts.airports)
	for _, code := range invalid {
		log.Warn().Str("airport", code).Msg("invalid airport code (must be 4 characters), skipping")
	}
	if len(valid) == 0 {
		return fmt.Errorf("%w: no valid airport codes provided", config.ErrValidation)
	}

	start, err := config.ParseDateArg(opts.startDate)
	if err != nil {
		return err
	}
	end, err := config.ParseDateArg(opts.endDate)
	if err != nil {
		return err
	}
	if err := config.ValidateRange(start, end); err != nil {
		return err
	}

	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	api := client.New(client.Config{
		AuthURL:        cfg.API.AuthURL,
		BaseURL:        cfg.API.BaseURL,
		ClientID:       creds.ClientID,
		ClientSecret:   creds.ClientSecret,
		MaxConcurrent:  cfg.Fetch.MaxConcurrent,
		RateLimitDelay: cfg.Fetch.RateLimitDelay,
		Timeout:        cfg.API.Timeout,
	}, log)

	runner := &fetcher.Runner{
		API:   api,
		Store: store,
		Obs:   fetcher.NewLogObserver(log),
	}

	params := fetcher.Params{
		Airports:      valid,
		StartDate:     start.Day,
		EndDate:       end.Day,
		StartOverride: start.Instant,
		EndOverride:   end.Instant,
		Kind:          kind,
		SkipExisting:  !opts.noSkipExisting,
	}

	log.Info().Str("run", params.Describe()).Msg("starting fetch run")

	summary, err := runner.Run(cmd.Context(), params)
	if err != nil {
		return err
	}

	if !root.quiet {
		fmt.Fprintf(cmd.OutOrStdout(),
			"Total: %d | Skipped: %d | Fetched: %d | Failed: %d\n",
			summary.Total, summary.Skipped, summary.Fetched, summary.Failed)
	}
	return nil
}
