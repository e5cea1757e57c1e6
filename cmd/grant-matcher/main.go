// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grant-matcher CLI.
// Implements: prd001-resolution, prd002-matching, prd003-export,
//             prd004-input (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grant-matcher/internal/match"
	"github.com/pdiddy/grant-matcher/internal/secrets"
	"github.com/pdiddy/grant-matcher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup
// (openalex-email for polite pool access).
var loadedSecrets map[string]string

// logger is the process-wide structured logger, configured in the root
// command's PersistentPreRunE.
var logger zerolog.Logger

// rootCmd is the base command for the grant-matcher CLI.
var rootCmd = &cobra.Command{
	Use:   "grant-matcher",
	Short: "Match research grant IDs to the publications that cite them",
	Long: `grant-matcher resolves research grant identifiers to publications using
the OpenAlex Works API. A grant ID is first resolved to the funders whose
works cite it (IDs are funder-assigned and can collide across funders),
then the chosen (grant, funder) pair is queried for all citing works,
which are normalized into flat records for export.

Use "resolve" to inspect funder candidates, "match" for a single grant ID,
and "batch" for a CSV of up to 100 grant IDs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logger = newLogger(level)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if email, ok := s["openalex-email"]; ok {
			logger.Debug().Str("email", email).Msg("using polite pool email from secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./grant-matcher.yaml or ~/.config/grant-matcher/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("email", "", "contact email for the OpenAlex polite pool")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grant-matcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grant-matcher"))
		}
	}

	viper.SetDefault("openalex.timeout", 30*time.Second)
	viper.SetDefault("openalex.per_page", 200)
	viper.SetDefault("openalex.rate_limit", 5.0)
	viper.SetDefault("openalex.burst", 5)
	viper.SetDefault("match.batch_limit", match.DefaultBatchLimit)
	viper.SetDefault("match.workers", 1)

	viper.SetEnvPrefix("GRANT_MATCHER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds a console zerolog logger on stderr so structured output
// never mixes with exported data on stdout.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).With().Timestamp().Logger().Level(lvl)
}

// openAlexConfig assembles the client configuration from config file, env,
// flags, and secrets. Flag email wins over config, which wins over the
// secrets directory.
func openAlexConfig(cmd *cobra.Command) types.OpenAlexConfig {
	cfg := types.OpenAlexConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("openalex.timeout"),
			UserAgent: viper.GetString("openalex.user_agent"),
		},
		BaseURL:    viper.GetString("openalex.base_url"),
		Email:      viper.GetString("openalex.email"),
		PerPage:    viper.GetInt("openalex.per_page"),
		RateLimit:  viper.GetFloat64("openalex.rate_limit"),
		Burst:      viper.GetInt("openalex.burst"),
		MaxRetries: viper.GetInt("openalex.max_retries"),
	}

	if flagEmail, _ := cmd.Flags().GetString("email"); flagEmail != "" {
		cfg.Email = flagEmail
	}
	if cfg.Email == "" {
		cfg.Email = loadedSecrets["openalex-email"]
	}
	return cfg
}

// matchConfig assembles batch settings from config file and env, with the
// --workers flag taking precedence when set.
func matchConfig(cmd *cobra.Command) types.MatchConfig {
	cfg := types.MatchConfig{
		BatchLimit: viper.GetInt("match.batch_limit"),
		Workers:    viper.GetInt("match.workers"),
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers != 0 {
		cfg.Workers = workers
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
