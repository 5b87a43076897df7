// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuler/internal/export"
	"github.com/pdiddy/heuler/internal/report"
	"github.com/pdiddy/heuler/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the report table and write it out",
	Long: `Extract reads the report table and writes every row with the report's
metadata. The report comes from --file (a local PDF), --url (a report
link), or, with neither, from discovery using the link at --index.

Output formats: yaml, json, csv, table, xlsx. xlsx requires --output.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("file", "", "local report PDF")
	extractCmd.Flags().String("url", "", "report PDF URL")
	extractCmd.Flags().Int("index", 0, "which discovered link to use")
	extractCmd.Flags().String("format", string(export.FormatTable), "output format: yaml, json, csv, table, xlsx")
	extractCmd.Flags().String("output", "", "write to this file instead of stdout")
	extractCmd.MarkFlagsMutuallyExclusive("file", "url")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	link, _ := cmd.Flags().GetString("url")
	index, _ := cmd.Flags().GetInt("index")
	formatName, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if format == export.FormatXLSX && output == "" {
		return fmt.Errorf("--format xlsx needs --output")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		ds   types.ReportDataset
		meta types.ReportMetadata
	)
	switch {
	case file != "" || link != "":
		src := types.SourceFromPath(file)
		if link != "" {
			src = types.SourceFromLink(types.ReportLink(link))
		}
		ex := report.NewExtractor(newClient(cfg.Extraction.HTTPConfig), cfg.Extraction, appLog)
		ds, meta, err = ex.Extract(cmd.Context(), src)
	default:
		var res report.Result
		res, err = newPipeline(cfg, report.SelectIndex(index)).Run(cmd.Context())
		ds, meta = res.Dataset, res.Metadata
	}
	if err != nil {
		return err
	}

	if output != "" {
		if err := export.WriteFile(output, format, ds, meta); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(ds), output)
		return nil
	}
	return export.Write(cmd.OutOrStdout(), format, ds, meta)
}
