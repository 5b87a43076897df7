package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuler/internal/acquire"
	"github.com/pdiddy/heuler/internal/discover"
	"github.com/pdiddy/heuler/internal/report"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the current report PDF",
	Long: `Fetch discovers the report links, picks the one at --index, and saves
the PDF into the reports directory next to a YAML record of its source.
An existing file is kept. The saved file can be read with extract --file.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("dir", "", "directory to save reports in (default from config, \"reports\")")
	fetchCmd.Flags().Int("index", 0, "which discovered link to download")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	index, _ := cmd.Flags().GetInt("index")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.Acquisition.ReportsDir = dir
	}

	d := discover.New(newClient(cfg.Discovery.HTTPConfig), cfg.Discovery, appLog)
	links, err := d.Discover(cmd.Context())
	if err != nil {
		return err
	}
	link, err := report.SelectIndex(index)(links)
	if err != nil {
		return err
	}

	rec, _, err := acquire.Download(cmd.Context(), newClient(cfg.Acquisition.HTTPConfig), link, cfg.Acquisition, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rec.Path)
	return nil
}
