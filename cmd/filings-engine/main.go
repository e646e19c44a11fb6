// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the filings-engine CLI.
// Implements: prd007-orchestration, prd005-forum (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filings-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the filings-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "filings-engine",
	Short: "Acquire listed-company filings as normalized PDF artifacts",
	Long: `filings-engine downloads the public paper trail of a listed company —
call transcripts, investor presentations, press releases, credit ratings,
related party disclosures, annual reports — and normalizes everything into
PDF files in one flat directory. Forum discussion threads can be captured
the same way.

Each acquisition surface is a subcommand: download for the exchange-driven
categories, thread for forum discussions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./filings-engine.yaml or ~/.config/filings-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("filings-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "filings-engine"))
		}
	}

	viper.SetEnvPrefix("FILINGS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
