package cmd

import (
	"fmt"

	"github.com/jce77/melodygen/pkg/output"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/jce77/melodygen/internal/cmd.Version=..."
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(output.Out, "melodygen %s\n", Version)
	},
}
