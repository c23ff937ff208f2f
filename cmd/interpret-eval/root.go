package main

import (
	"github.com/spf13/cobra"

	"interpreteval/internal/config"
	"interpreteval/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
}

// cfg is the effective configuration, resolved before any subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "interpret-eval",
	Short: "Explainable evaluation of NLP system outputs",
	Long: "interpret-eval breaks a system's overall score down by input\n" +
		"feature: bucket-level performance, confidence intervals, calibration\n" +
		"and pairwise system comparison for classification, QA, sequence\n" +
		"labeling, generation and metric meta-evaluation tasks.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(rootFlags.configPath)
		if err != nil {
			return err
		}
		cfg = c
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logging.Init(level, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Config file path (default: "+config.DefaultPath+")")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}
