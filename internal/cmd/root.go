package cmd

import (
	"context"
	"fmt"
	"os"

	clierrors "github.com/jce77/melodygen/pkg/errors"
	"github.com/jce77/melodygen/pkg/config"
	"github.com/jce77/melodygen/pkg/logger"
	"github.com/jce77/melodygen/pkg/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "melodygen",
	Short: "melodygen - seed-driven MIDI melody generator",
	Long: `melodygen builds melodies by walking a musical scale with direction
patterns while time patterns decide how long every note and rest lasts.
The same seed and the same pattern files always produce the same MIDI file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize config and logger
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.InvalidFormatError(outputFmt)
			}
			config.Set("output.format", outputFmt)
		} else if !output.ValidateOutputFormat(config.GetString("output.format")) {
			return clierrors.InvalidFormatError(config.GetString("output.format"))
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		cliErr := clierrors.CategorizeError(err)
		logger.Error("Command failed", "type", cliErr.Type, "error", err)
		fmt.Fprint(os.Stderr, clierrors.FormatError(cliErr))
		os.Exit(cliErr.ExitCode())
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/melodygen/config.toml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "output", "text", "Output format: text, json, table")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(patternCmd)
	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
