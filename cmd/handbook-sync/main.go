// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the handbook-sync CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/handbook-sync/internal/handbook"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the handbook-sync CLI.
var rootCmd = &cobra.Command{
	Use:   "handbook-sync",
	Short: "Mirror WordPress.org handbooks as a tree of markdown files",
	Long: `handbook-sync pages through a handbook collection of the WordPress.org
REST API, converts each page's rendered HTML into markdown, and writes one
file per page under the output directory, following the handbook's URL
hierarchy. Files are only rewritten when their content changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./handbook-sync.yaml or ~/.config/handbook-sync/handbook-sync.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("handbook-sync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "handbook-sync"))
		}
	}

	viper.SetEnvPrefix("HANDBOOK_SYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, handbook.ErrEmptyCollection) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
