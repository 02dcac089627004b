// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperstack CLI, a personal
// reference manager: a local reading library over SQLite with hybrid
// semantic search and multi-source paper discovery.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperstack/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paperstack CLI.
var rootCmd = &cobra.Command{
	Use:   "paperstack",
	Short: "Personal reference manager for academic papers",
	Long: `paperstack manages a personal library of academic papers: add papers by
URL with automatic metadata lookup, mark them done with concepts and
summaries, and search the library with hybrid embedding + keyword search.

The discover subcommand queries arXiv, Semantic Scholar, and CrossRef,
merges and deduplicates the results, and ranks them by citation count.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperstack.yaml or ~/.config/paperstack/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "library directory (default: ~/.paperstack)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperstack")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperstack"))
		}
	}

	viper.SetEnvPrefix("PAPERSTACK")
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
