package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"interpreteval/internal/format"
	"interpreteval/internal/report"
)

var reportFlags struct {
	formatName string
}

var reportCmd = &cobra.Command{
	Use:   "report <report.json>",
	Short: "Re-render a saved report as tables",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.formatName, "format", "ascii", "Output format: ascii or markdown")
}

func runReport(cmd *cobra.Command, args []string) error {
	mode, ok := format.ParseMode(reportFlags.formatName)
	if !ok {
		return fmt.Errorf("unknown format %q (want ascii or markdown)", reportFlags.formatName)
	}
	r, err := report.Load(args[0])
	if err != nil {
		return err
	}
	if mode == format.Markdown {
		fmt.Fprintln(cmd.OutOrStdout(), r.Markdown())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), r.RenderTables(mode))
	return nil
}
