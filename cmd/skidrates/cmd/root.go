// Package cmd provides the commands of the skidrates CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/skidrates/internal/config"
	"github.com/JonMunkholm/skidrates/internal/core"
	"github.com/JonMunkholm/skidrates/internal/database"
	"github.com/JonMunkholm/skidrates/internal/logging"
	"github.com/JonMunkholm/skidrates/internal/matrix"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cliUserAgent tags audit entries written from the command line.
const cliUserAgent = "skidrates-cli"

var (
	envFile string
	verbose bool

	cfg     *config.Config
	pool    *pgxpool.Pool
	service *core.Service
)

var rootCmd = &cobra.Command{
	Use:   "skidrates",
	Short: "Manage skid-based freight rate matrices",
	Long: `skidrates reads and writes the pickup city by skid count rate matrix
stored in PostgreSQL, one slice per service and service type.

Examples:
  skidrates services
  skidrates export --service LTL --type Standard -o ltl.csv
  skidrates import --service LTL --type Standard ltl.csv
  skidrates template -o blank.csv`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if pool != nil {
			pool.Close()
		}
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(citiesCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(resetCmd)
}

// setup loads configuration, logging, and the database pool shared by
// every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnv(envFile); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	// Logs go to stderr so stdout carries only CSV or listings.
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	pool, err = database.Connect(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	service = core.NewPostgresService(pool, cfg)
	slog.Debug("connected", "db_max_conns", cfg.Database.MaxConns)
	return nil
}

// loadEnv loads path, or .env when path is empty. A missing default .env is
// not an error.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// selectorFlags binds --service and --type on c.
type selectorFlags struct {
	service     string
	serviceType string
}

func (f *selectorFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&f.service, "service", "", "service name, e.g. LTL")
	c.Flags().StringVar(&f.serviceType, "type", "", "service type, e.g. Standard")
}

func (f *selectorFlags) selector() (matrix.Selector, error) {
	sel := matrix.Selector{
		Service:     strings.TrimSpace(f.service),
		ServiceType: strings.TrimSpace(f.serviceType),
	}
	if sel.Service == "" || sel.ServiceType == "" {
		return matrix.Selector{}, errors.New("--service and --type are required")
	}
	return sel, nil
}

// cliContext tags ctx so audit entries show the command line as the client.
func cliContext(ctx context.Context) context.Context {
	return core.ContextWithClient(ctx, "", cliUserAgent)
}

// writeOutput writes text to path, or to stdout with a trailing newline when
// path is empty or "-".
func writeOutput(c *cobra.Command, path, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(c.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(c.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
