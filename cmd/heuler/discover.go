package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuler/internal/discover"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the report links on the season page",
	Long: `Discover fetches the season listing page and prints every link that
points into the report directory, in page order. More than one link is
logged as a warning; use --index with fetch or extract to pick one.`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := discover.New(newClient(cfg.Discovery.HTTPConfig), cfg.Discovery, appLog)
	links, err := d.Discover(cmd.Context())
	if err != nil {
		return err
	}
	for i, l := range links {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, l)
	}
	return nil
}
