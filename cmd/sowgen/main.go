// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sowgen CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the sowgen CLI.
var rootCmd = &cobra.Command{
	Use:   "sowgen",
	Short: "Generate statement-of-work documents from plain-text templates",
	Long: `sowgen reads a template transcript, discovers its [Placeholder] and
<Placeholder> tokens, builds a typed field schema, merges captured values,
and writes the result as a .docx package or a single-page PDF.

Templates can be used straight from a file or imported into a local
library with "sowgen templates add".`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sowgen.yaml or ~/.config/sowgen/sowgen.yaml)")
	rootCmd.PersistentFlags().String("library-dir", "", "template library directory (default: .sowgen)")
	_ = viper.BindPFlag("library.dir", rootCmd.PersistentFlags().Lookup("library-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sowgen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sowgen"))
		}
	}

	viper.SetEnvPrefix("SOWGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
