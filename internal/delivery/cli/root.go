// Package cli implements orderctl, the operator command line for the ordering assistant.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tastybyte/orderbot/config"
	"github.com/tastybyte/orderbot/internal/infrastructure/classifier"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
	"github.com/tastybyte/orderbot/internal/infrastructure/store"
	"github.com/tastybyte/orderbot/internal/nlp"
	"github.com/tastybyte/orderbot/internal/seed"
)

// Version is injected at build time via ldflags
var Version = "dev"

// cliContext carries initialized dependencies through the command tree
type cliContext struct {
	cfg    *config.Config
	logger logging.Logger
}

type cliContextKey struct{}

// NewRootCommand creates the orderctl root command with every subcommand
func NewRootCommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:     "orderctl",
		Short:   "Operator tools for the restaurant ordering assistant",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config initialization failed: %w", err)
			}
			if logLevel == "" {
				logLevel = cfg.Log.Level
			}
			logger, err := logging.New(logLevel, "console")
			if err != nil {
				return fmt.Errorf("logger initialization failed: %w", err)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, cliContextKey{}, &cliContext{cfg: cfg, logger: logger}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to the configured level")

	cmd.AddCommand(newParseCmd(), newSeedCmd())
	return cmd
}

// Execute runs the root command with args and writes results to out
func Execute(ctx context.Context, args []string, out io.Writer) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd.ExecuteContext(ctx)
}

func fromContext(cmd *cobra.Command) *cliContext {
	c, _ := cmd.Context().Value(cliContextKey{}).(*cliContext)
	return c
}

func newParseCmd() *cobra.Command {
	var menu []string

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse a customer message and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := fromContext(cmd)
			ctx := cmd.Context()

			zeroShot, closeClassifier, err := classifier.Open(ctx, c.cfg.Classifier.Provider, c.cfg.Classifier.APIKey,
				c.cfg.Classifier.Model, c.cfg.Classifier.RatePerSec, c.logger)
			if err != nil {
				return fmt.Errorf("open classifier: %w", err)
			}
			defer func() { _ = closeClassifier() }()

			parser := nlp.NewParser(
				nlp.WithLogger(c.logger),
				nlp.WithClassifier(zeroShot),
				nlp.WithClassifierTimeout(c.cfg.Parser.ClassifierTimeout),
				nlp.WithThresholds(c.cfg.Parser.FuzzyThreshold, c.cfg.Parser.FuzzyGoodEnough),
			)

			if len(menu) == 0 {
				menu = seed.MenuNames()
			}
			result := parser.Parse(ctx, strings.Join(args, " "), menu)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringSliceVar(&menu, "menu", nil, "comma separated menu item names (default: the seeded menu)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the default menu into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := fromContext(cmd)

			s, closeStore, err := store.Open(c.cfg.Store.Type, c.cfg.Store.RedisURL, c.cfg.Store.KeyPrefix)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = closeStore() }()

			n, err := seed.Load(cmd.Context(), s, c.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d menu items into %s store\n", n, c.cfg.Store.Type)
			return nil
		},
	}
}
