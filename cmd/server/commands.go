// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
)

// defaultReportWindow is the report window when --since is omitted.
const defaultReportWindow = 7 * 24 * time.Hour

var rootCmd = &cobra.Command{
	Use:           "reelmatch",
	Short:         "Media discovery recommendation engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			return os.Setenv(config.ConfigPathEnvVar, path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")
	rootCmd.Version = version

	refreshCmd.Flags().Int("hours", 0, "activity window in hours (default: scheduler.refresh_hours_back)")
	reportCmd.Flags().String("since", "", "window start, RFC 3339 (default: 7 days before --until)")
	reportCmd.Flags().String("until", "", "window end, RFC 3339 (default: now)")
	tokenCmd.Flags().Int64("user", 0, "user id to issue the token for")
	tokenCmd.Flags().String("role", "", "role claim (empty means the default user role)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd, generateCmd, refreshCmd, cleanupCmd, reportCmd, tokenCmd)
}

// loadConfig loads the layered configuration and configures logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// withApp loads configuration, builds the application and runs fn with it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, logging.Logger())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server, event consumers and batch schedules",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.Serve(ctx)
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate recommendations for every eligible user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			summary, err := a.jobs.GenerateForAllUsers(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenerate recommendations for recently active users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		hours, _ := cmd.Flags().GetInt("hours")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if hours == 0 {
				hours = a.cfg.Scheduler.RefreshHoursBack
			}
			summary, err := a.jobs.RefreshForActiveUsers(ctx, hours)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired recommendations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			n, err := a.engine.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{"deleted": n})
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print recommendation engagement analytics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sinceRaw, _ := cmd.Flags().GetString("since")
		untilRaw, _ := cmd.Flags().GetString("until")
		since, until, err := parseReportWindow(sinceRaw, untilRaw, time.Now().UTC())
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			report, err := a.reporter.Report(ctx, since, until)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		})
	},
}

// parseReportWindow parses the report flags. until defaults to now and since
// to seven days before until.
func parseReportWindow(sinceRaw, untilRaw string, now time.Time) (time.Time, time.Time, error) {
	until := now
	if untilRaw != "" {
		t, err := time.Parse(time.RFC3339, untilRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--until: %w", err)
		}
		until = t
	}
	since := until.Add(-defaultReportWindow)
	if sinceRaw != "" {
		t, err := time.Parse(time.RFC3339, sinceRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--since: %w", err)
		}
		since = t
	}
	if !since.Before(until) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since %s must be before --until %s",
			since.Format(time.RFC3339), until.Format(time.RFC3339))
	}
	return since, until, nil
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token signed with JWT_SECRET",
	Long: `Mint a bearer token signed with the configured JWT secret.

Intended for development and operations; production tokens normally come
from the identity provider that shares the secret.

Examples:
  reelmatch token --user 42
  reelmatch token --user 1 --role admin --ttl 1h`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		manager, err := auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return err
		}
		token, err := manager.GenerateToken(userID, role, ttl)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}
