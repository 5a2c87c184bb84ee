// Package main provides the leaddesk binary: the dashboard API server plus
// maintenance commands for the store.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"leaddesk/internal/config"
	"leaddesk/internal/database"
	"leaddesk/internal/reports"
	"leaddesk/internal/server"
)

const (
	Version = "0.1.0"
	appName = "leaddesk"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Lead and proposal dashboard",
		Long: `leaddesk serves the lead and proposal dashboard API.

Settings are read from the environment, and from a .env file in the
working directory when one exists.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd(), migrateCmd(), seedCmd(), exportCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := server.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			logger.Info("starting leaddesk", "version", Version, "store", cfg.StoreDriver, "blobs", cfg.BlobDriver)
			if err := s.ListenAndServe(ctx); err != nil {
				return fmt.Errorf("http server error: %w", err)
			}
			logger.Info("graceful shutdown complete")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			// opening the store applies its schema
			db, err := database.Open(ctx, cfg.StoreDriver, cfg.DSN())
			if err != nil {
				return err
			}
			if err := db.Close(); err != nil {
				return err
			}

			if cfg.StoreDriver != database.DriverPostgres {
				logger.Info("store schema ready", "driver", cfg.StoreDriver)
				return nil
			}
			version, dirty, err := database.MigrationVersion(cfg.DBString)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "version", version, "dirty", dirty)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill empty users, spare parts and templates with sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			cfg.SeedOnStart = false
			s, err := server.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d spare parts, %d templates\n",
				res.Users, res.SpareParts, res.Templates)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		userID string
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:       "export <leads|proposals>",
		Short:     "Write a leads or proposals report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{reports.TypeLeads, reports.TypeProposals},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !reports.ValidFormat(format) {
				return fmt.Errorf("format must be %s or %s", reports.FormatCSV, reports.FormatXLSX)
			}
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := server.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			leads, err := s.Leads().All(ctx)
			if err != nil {
				return err
			}
			proposals, err := s.Proposals().All(ctx)
			if err != nil {
				return err
			}
			names, err := s.Users().Names(ctx)
			if err != nil {
				return err
			}
			table, err := reports.Build(args[0], userID, reports.Source{Leads: leads, Proposals: proposals, Names: names})
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := reports.Write(w, format, args[0], table); err != nil {
				return err
			}
			if out != "" {
				logger.Info("report written", "file", out, "rows", len(table.Rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", reports.All, "Only include records of this user id")
	cmd.Flags().StringVarP(&format, "format", "f", reports.FormatCSV, "Output format (csv, xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; defaults to stdout, or "+
		"<type>-report-<date>.<format> when --format is xlsx")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if out == "" && format == reports.FormatXLSX {
			out = reports.Filename(args[0], time.Now(), format)
		}
	}
	return cmd
}
