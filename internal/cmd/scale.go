package cmd

import (
	"fmt"
	"strings"

	"github.com/jce77/melodygen/pkg/output"
	"github.com/jce77/melodygen/pkg/service"
	"github.com/jce77/melodygen/pkg/theory"
	"github.com/spf13/cobra"
)

var (
	scaleKey    string
	scaleOctave int
	scaleTempo  int
	scaleFile   string
	scaleUpload bool
)

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Inspect the built-in scales",
}

type scaleInfo struct {
	Name      string `json:"name"`
	Intervals []int  `json:"intervals"`
}

var scaleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in scales and their intervals",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := theory.DefaultRegistry()
		infos := []scaleInfo{}
		rows := [][]string{}
		for _, name := range registry.Names() {
			def, err := registry.Definition(name)
			if err != nil {
				return err
			}
			infos = append(infos, scaleInfo{Name: name, Intervals: def.Intervals})
			rows = append(rows, []string{name, formatIntervals(def.Intervals)})
		}
		return output.PrintList("Scales", infos, []string{"NAME", "INTERVALS"}, rows)
	},
}

type scaleKeys struct {
	Name      string   `json:"name"`
	Root      string   `json:"root"`
	Keys      []string `json:"keys"`
	EndOctave int      `json:"end_octave"`
}

var scaleShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the keys of a scale built from a root key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := theory.ParseKey(stringSetting(cmd, "key", "generate.key", scaleKey))
		if err != nil {
			return err
		}
		octave := intSetting(cmd, "octave", "generate.octave", scaleOctave)

		scale, err := theory.DefaultRegistry().Build(args[0], root, octave)
		if err != nil {
			return err
		}

		keys := make([]string, len(scale.Keys))
		for i, k := range scale.Keys {
			keys[i] = k.String()
		}
		info := scaleKeys{Name: scale.Name, Root: root.String(), Keys: keys, EndOctave: scale.Octave}
		return output.PrintRecord("Scale", info, []output.Field{
			{Key: "Name", Value: info.Name},
			{Key: "Root", Value: info.Root},
			{Key: "Keys", Value: strings.Join(keys, " ")},
			{Key: "End octave", Value: info.EndOctave},
		})
	},
}

var scaleRenderCmd = &cobra.Command{
	Use:   "render <name>",
	Short: "Write a scale as a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := scaleFile
		if name == "" {
			name = args[0] + "_scale"
		}
		opts := service.GenerateOptions{
			Scale:      args[0],
			Key:        stringSetting(cmd, "key", "generate.key", scaleKey),
			Octave:     intSetting(cmd, "octave", "generate.octave", scaleOctave),
			Tempo:      intSetting(cmd, "tempo", "generate.tempo", scaleTempo),
			Seed:       1,
			OutputName: name,
		}

		sinks, err := buildSinks(cmd.Context(), scaleUpload)
		if err != nil {
			return err
		}
		store := openHistory()
		defer closeHistory(store)

		svc := service.NewGenerateService(newLoader(), theory.DefaultRegistry(), sinks, store)
		result, err := svc.RenderScale(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return printGenerateResult(result)
	},
}

func formatIntervals(intervals []int) string {
	parts := make([]string, len(intervals))
	for i, v := range intervals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

func init() {
	for _, c := range []*cobra.Command{scaleShowCmd, scaleRenderCmd} {
		c.Flags().StringVar(&scaleKey, "key", "C", "Root key")
		c.Flags().IntVar(&scaleOctave, "octave", 3, "Starting octave")
	}
	scaleRenderCmd.Flags().IntVar(&scaleTempo, "tempo", 90, "Tempo in beats per minute")
	scaleRenderCmd.Flags().StringVar(&scaleFile, "output-file", "", "Output file name (default: <name>_scale)")
	scaleRenderCmd.Flags().BoolVar(&scaleUpload, "upload", false, "Also upload the file to the configured S3 bucket")

	scaleCmd.AddCommand(scaleListCmd)
	scaleCmd.AddCommand(scaleShowCmd)
	scaleCmd.AddCommand(scaleRenderCmd)
}
