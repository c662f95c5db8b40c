package main

import (
	"github.com/spf13/cobra"

	"github.com/bindery/bindery/internal/api"
	"github.com/bindery/bindery/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "bindery",
	Short: "Turn PDFs into editable, chaptered ePub books",
	Long: `Bindery converts PDF books into ePub files.

Documents with a usable text layer are converted directly. Scanned
documents are transcribed page by page with a vision model through any
OpenAI-compatible provider (OpenAI, OpenRouter, Ollama, LM Studio, ...).

Pages can be edited, split, and marked as chapter starts before export.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bindery/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "bindery home directory (default: ~/.bindery)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
