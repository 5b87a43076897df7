// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the heuler CLI. Run without a
// subcommand it discovers the current rescued seal pup report, extracts
// it, and prints the report's modification timestamp.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/heuler/internal/logger"
	"github.com/pdiddy/heuler/internal/report"
)

// version is set at build time via ldflags.
var version = "dev"

// timestampLayout prints the modification time with its UTC offset.
const timestampLayout = "2006-01-02 15:04:05-07:00"

// appLog is built from config before any command runs.
var appLog logger.Logger = logger.NewNop()

// rootCmd is the base command for the heuler CLI.
var rootCmd = &cobra.Command{
	Use:   "heuler",
	Short: "Scrape the Seehundstation Friedrichskoog rescued seal pup report",
	Long: `heuler finds the current rescued seal pup (Heuler) report on the
Seehundstation Friedrichskoog season page, reads the table out of the PDF,
and types every row.

Run without a subcommand it performs discovery and extraction with the
configured defaults and prints the report's modification timestamp. Use
discover, fetch, and extract to run the steps on their own.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { appLog.Sync() },
	RunE:              runRoot,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./heuler.yaml or ~/.config/heuler/heuler.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Loading %s: %v\n", f, err)
		}
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("heuler")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "heuler"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("HEULER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogger(cmd *cobra.Command, args []string) error {
	log, err := logger.New(logConfig())
	if err != nil {
		return err
	}
	appLog = log
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p := newPipeline(cfg, report.SelectFirst)
	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Metadata.Modified.Format(timestampLayout))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
