package cmd

import (
	"fmt"
	"os"
	"time"

	clierrors "github.com/jce77/melodygen/pkg/errors"
	"github.com/jce77/melodygen/pkg/config"
	"github.com/jce77/melodygen/pkg/history"
	"github.com/jce77/melodygen/pkg/logger"
	"github.com/jce77/melodygen/pkg/output"
	"github.com/jce77/melodygen/pkg/sequencer"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historySeed  int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previous generation runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireHistory()
		if err != nil {
			return err
		}
		defer closeHistory(store)

		var runs []history.Run
		if cmd.Flags().Changed("seed") {
			runs, err = store.FindBySeed(cmd.Context(), historySeed)
		} else {
			runs, err = store.List(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, []string{
				shortID(run.ID),
				run.CreatedAt.Local().Format(time.DateTime),
				run.Mode,
				fmt.Sprint(run.Seed),
				run.Scale,
				run.Key,
				fmt.Sprint(run.NoteCount),
			})
		}
		return output.PrintList("Runs", runs, []string{"ID", "CREATED", "MODE", "SEED", "SCALE", "KEY", "NOTES"}, rows)
	},
}

// runDetail is a run plus the summary of its local file when still present
type runDetail struct {
	*history.Run
	File *sequencer.Summary `json:"file,omitempty"`
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run, by id or unique id prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireHistory()
		if err != nil {
			return err
		}
		defer closeHistory(store)

		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		detail := runDetail{Run: run, File: localSummary(run.Locations)}
		fields := []output.Field{
			{Key: "ID", Value: run.ID},
			{Key: "Created", Value: run.CreatedAt.Local().Format(time.DateTime)},
			{Key: "Mode", Value: run.Mode},
			{Key: "Seed", Value: run.Seed},
			{Key: "Scale", Value: run.Scale},
			{Key: "Key", Value: run.Key},
			{Key: "Octave", Value: run.Octave},
			{Key: "Beats", Value: run.BeatBudget},
			{Key: "Tempo", Value: run.Tempo},
			{Key: "Notes", Value: run.NoteCount},
			{Key: "Direction patterns", Value: joinOrDash(run.Directions)},
			{Key: "Time patterns", Value: joinOrDash(run.Times)},
			{Key: "Pitch patterns", Value: joinOrDash(run.Pitches)},
			{Key: "Locations", Value: joinOrDash(run.Locations)},
			{Key: "SHA-256", Value: run.SHA256},
		}
		if detail.File != nil {
			fields = append(fields,
				output.Field{Key: "File ticks", Value: detail.File.TotalTicks},
				output.Field{Key: "File notes", Value: detail.File.Notes},
				output.Field{Key: "File tempo", Value: fmt.Sprintf("%d µs/beat", detail.File.TempoMicros)},
			)
		}
		return output.PrintRecord("Run", detail, fields)
	},
}

func requireHistory() (*history.Store, error) {
	if !config.GetBool("history.enabled") {
		return nil, clierrors.NewCLIError(clierrors.ErrorTypeValidation, "Run history is disabled", nil).
			WithSuggestion("Set history.enabled = true in " + config.GetConfigFilePath())
	}
	return history.Open(config.GetString("history.path"), verbose)
}

// localSummary reads back the first location that is a readable MIDI file
func localSummary(locations []string) *sequencer.Summary {
	for _, loc := range locations {
		data, err := os.ReadFile(loc)
		if err != nil {
			continue
		}
		summary, err := sequencer.Summarize(data)
		if err != nil {
			logger.Debug("Stored file is not readable MIDI", "path", loc, "error", err)
			continue
		}
		return summary
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", history.DefaultLimit, "Maximum number of runs to list")
	historyListCmd.Flags().Int64Var(&historySeed, "seed", 0, "Only list runs with this seed")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
