// Package cli contains the citypulse command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"citypulse/internal/app"
	"citypulse/internal/config"
	"citypulse/internal/observability/logging"
)

// session is the state shared by every subcommand of one invocation.
type session struct {
	envFile string
	output  string
	verbose bool

	app    *app.App
	logger *slog.Logger
}

// newRoot builds the command tree. The caller closes the session once the
// command finishes, whether or not it failed.
func newRoot(version string) (*cobra.Command, *session) {
	s := &session{}

	root := &cobra.Command{
		Use:   "citypulse",
		Short: "City news, bookmarks and emergency alerts",
		Long: `citypulse reads the latest news for a city, keeps a bookmark list,
remembers the selected city and shows emergency alerts.

It uses the same configuration and store as the API server, so bookmarks
saved here are visible over HTTP when both point at one backend.

Example usage:
  citypulse cities                   # List selectable cities
  citypulse city set Boston          # Remember a city
  citypulse news                     # News for the selected city
  citypulse bookmarks list --output json
  citypulse read https://example.com/story`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["skipApp"] == "true" {
				return nil
			}
			return s.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&s.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVarP(&s.output, "output", "o", outputText, "output format: text or json")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newCitiesCmd(s),
		newCityCmd(s),
		newNewsCmd(s),
		newBookmarksCmd(s),
		newAlertsCmd(s),
		newReadCmd(s),
		newVersionCmd(s, version),
	)
	return root, s
}

// Execute runs the CLI against os.Args.
func Execute(ctx context.Context, version string) error {
	root, s := newRoot(version)
	err := root.ExecuteContext(ctx)
	if cerr := s.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (s *session) open(ctx context.Context) error {
	if s.output != outputText && s.output != outputJSON {
		return fmt.Errorf("unknown output format %q (want text or json)", s.output)
	}
	if err := config.LoadDotEnv(s.envFile); err != nil {
		return err
	}
	cfg := config.Load()

	level := cfg.LogLevel
	if s.verbose {
		level = "debug"
	}
	s.logger = logging.New(logging.Options{Level: level, Format: "text", Output: os.Stderr})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if cfg.Store.Backend == config.BackendMemory {
		s.logger.Warn("memory store: bookmarks and city are lost when the process exits")
	}

	a, err := app.New(ctx, cfg, s.logger)
	if err != nil {
		return err
	}
	s.app = a
	return nil
}

func (s *session) close(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close(ctx)
	s.app = nil
	return err
}
