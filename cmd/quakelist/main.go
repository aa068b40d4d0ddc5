// Command quakelist renders earthquake reports from a CSV file as a colored
// terminal list.
//
// Usage:
//
//	quakelist testdata/quakes.csv --timezone America/Los_Angeles
//	cat quakes.csv | quakelist -
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/quake-report-service/internal/config"
	"github.com/couchcryptid/quake-report-service/internal/csvsource"
	"github.com/couchcryptid/quake-report-service/internal/domain"
	"github.com/couchcryptid/quake-report-service/internal/render"
	"github.com/couchcryptid/quake-report-service/internal/resources"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		timezone      string
		resourcesFile string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:          "quakelist <file.csv|->",
		Short:        "Render earthquake reports as a colored list",
		Long:         "Reads magnitude,location,date rows and prints one list entry per report.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			tz, err := config.ParseTimeZone(timezone)
			if err != nil {
				return err
			}
			res, err := resources.Load(resourcesFile)
			if err != nil {
				return err
			}
			msgs, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			logger.Debug("rendering reports", "count", len(msgs), "timezone", tz.String())
			formatter := domain.NewFormatter(res, tz)
			rows := make([]domain.DisplayFields, 0, len(msgs))
			for _, msg := range msgs {
				eq := msg.Earthquake(domain.WithTimeZone(tz), domain.WithLogger(logger))
				rows = append(rows, formatter.Format(eq))
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), render.List(rows))
			return err
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA time zone for dates and times")
	cmd.Flags().StringVar(&resourcesFile, "resources", "", "YAML file overriding the near-the phrase and palette")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]domain.QuakeMessage, error) {
	if path == "-" {
		return csvsource.Read(stdin)
	}
	msgs, err := csvsource.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return msgs, nil
}
