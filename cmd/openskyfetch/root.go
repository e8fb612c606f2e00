// cmd/openskyfetch/root.go
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"openskyfetch/config"
)

type rootOptions struct {
	configPath string
	verbosity  int
	quiet      bool
}

// logger maps verbosity to a console logger: default warn, -v info,
// -vv debug, --quiet disabled.
func (o *rootOptions) logger() zerolog.Logger {
	if o.quiet {
		return zerolog.Nop()
	}
	level := zerolog.WarnLevel
	switch {
	case o.verbosity == 1:
		level = zerolog.InfoLevel
	case o.verbosity >= 2:
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// loadConfig reads the optional config file, or the defaults when no
// path was given.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "openskyfetch",
		Short:         "OpenSky Network flight data fetcher and exporter",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug)")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all log output")

	flights := &cobra.Command{
		Use:   "flights",
		Short: "Fetch flight data from the OpenSky Network API",
	}
	flights.AddCommand(newFetchCmd(opts, "departure"))
	flights.AddCommand(newFetchCmd(opts, "destination"))

	root.AddCommand(flights)
	root.AddCommand(newExportCmd(opts))
	return root
}
