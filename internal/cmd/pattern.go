package cmd

import (
	"fmt"

	"github.com/jce77/melodygen/pkg/output"
	"github.com/jce77/melodygen/pkg/service"
	"github.com/spf13/cobra"
)

var (
	patternProbabilities string
	patternSize          int
	patternCount         int
	patternOutput        string
	patternSeed          int64
)

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Author pattern libraries",
	Long: `Draw new direction or time pattern libraries from a probability file.
Without --output the library is printed instead of saved.`,
}

var patternDirectionCmd = &cobra.Command{
	Use:   "direction",
	Short: "Author direction patterns from direction_probabilities/",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := service.NewAuthorService(newLoader()).AuthorDirections(authorOptions())
		if err != nil {
			return err
		}
		return printAuthorResult("Direction patterns", result)
	},
}

var patternTimeCmd = &cobra.Command{
	Use:   "time",
	Short: "Author time patterns from time_probabilities/",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := service.NewAuthorService(newLoader()).AuthorTimes(authorOptions())
		if err != nil {
			return err
		}
		return printAuthorResult("Time patterns", result)
	},
}

func authorOptions() service.AuthorOptions {
	return service.AuthorOptions{
		Probabilities: patternProbabilities,
		Size:          patternSize,
		Count:         patternCount,
		Output:        patternOutput,
		Seed:          patternSeed,
	}
}

func printAuthorResult(title string, result *service.AuthorResult) error {
	if result.Path == "" && output.GetOutputFormat() != output.FormatJSON {
		fmt.Fprint(output.Out, result.Text)
		return nil
	}

	fields := []output.Field{
		{Key: "Seed", Value: result.Seed},
		{Key: "Probabilities", Value: result.Source},
		{Key: "Patterns", Value: result.Patterns},
		{Key: "Size", Value: result.Size},
	}
	if result.Path != "" {
		fields = append(fields, output.Field{Key: "Written", Value: result.Path})
	}
	if err := output.PrintRecord(title, result, fields); err != nil {
		return err
	}
	if result.Path != "" && output.GetOutputFormat() == output.FormatText {
		output.PrintSuccess("Saved %d patterns", result.Patterns)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{patternDirectionCmd, patternTimeCmd} {
		c.Flags().StringVar(&patternProbabilities, "probabilities", service.DefaultPatternFile, "Probability file to draw from")
		c.Flags().IntVar(&patternSize, "size", service.DefaultAuthorSize, "Steps per pattern")
		c.Flags().IntVar(&patternCount, "patterns", service.DefaultAuthorCount, "Number of patterns")
		c.Flags().StringVarP(&patternOutput, "output-file", "f", "", "Library name to save under the pattern folder")
		c.Flags().Int64Var(&patternSeed, "seed", 0, "Seed for the draws (default: random nine-digit seed)")
		patternCmd.AddCommand(c)
	}
}
