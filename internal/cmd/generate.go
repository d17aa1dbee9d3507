package cmd

import (
	"github.com/jce77/melodygen/pkg/history"
	"github.com/jce77/melodygen/pkg/output"
	"github.com/jce77/melodygen/pkg/pattern"
	"github.com/jce77/melodygen/pkg/service"
	"github.com/jce77/melodygen/pkg/theory"
	"github.com/spf13/cobra"
)

var (
	genScale      string
	genKey        string
	genOctave     int
	genSeed       int64
	genBeats      float64
	genTempo      int
	genPercentage float64
	genOutputFile string
	genUpload     bool

	genDirections     string
	genDirectionsMin  int
	genDirectionsMax  int
	genDirectionProbs string
	genDirectionSize  int
	genDirectionCount int

	genTimes     string
	genTimesMin  int
	genTimesMax  int
	genTimeProbs string
	genTimeSize  int
	genTimeCount int

	genPitches    string
	genPitchesMin int
	genPitchesMax int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate MIDI melodies",
	Long:  "Generate melodies from a scale and pattern files and write them as MIDI files",
}

var generateMelodyCmd = &cobra.Command{
	Use:   "melody",
	Short: "Walk a scale with direction and time patterns",
	Long: `Generate a melody by walking the scale with direction patterns while a
time pattern sets the note and rest lengths.

When --direction-probabilities or --time-probabilities names an existing
probability file, a library is authored from it first with the same seed and
saved as "autogenerated".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		opts.Directions = service.LibrarySpec{Name: genDirections, Range: pattern.Range{Min: genDirectionsMin, Max: genDirectionsMax}}
		opts.Times = service.LibrarySpec{Name: genTimes, Range: pattern.Range{Min: genTimesMin, Max: genTimesMax}}
		if cmd.Flags().Changed("direction-probabilities") {
			opts.DirectionProbabilities = service.AuthoringSpec{Name: genDirectionProbs, Size: genDirectionSize, Count: genDirectionCount}
		}
		if cmd.Flags().Changed("time-probabilities") {
			opts.TimeProbabilities = service.AuthoringSpec{Name: genTimeProbs, Size: genTimeSize, Count: genTimeCount}
		}

		svc, cleanup, err := newGenerateService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.GenerateMelody(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return printGenerateResult(result)
	},
}

var generatePitchCmd = &cobra.Command{
	Use:   "pitch",
	Short: "Move by semitone shifts from a pitch pattern",
	Long: `Generate a melody that starts on the root key and moves by the semitone
shifts of a pitch pattern, with note lengths from a time pattern.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		opts.Times = service.LibrarySpec{Name: genTimes, Range: pattern.Range{Min: genTimesMin, Max: genTimesMax}}
		opts.Pitches = service.LibrarySpec{Name: genPitches, Range: pattern.Range{Min: genPitchesMin, Max: genPitchesMax}}
		if cmd.Flags().Changed("time-probabilities") {
			opts.TimeProbabilities = service.AuthoringSpec{Name: genTimeProbs, Size: genTimeSize, Count: genTimeCount}
		}

		svc, cleanup, err := newGenerateService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.GeneratePitch(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return printGenerateResult(result)
	},
}

func commonOptions(cmd *cobra.Command) service.GenerateOptions {
	return service.GenerateOptions{
		Scale:      stringSetting(cmd, "scale", "generate.scale", genScale),
		Key:        stringSetting(cmd, "key", "generate.key", genKey),
		Octave:     intSetting(cmd, "octave", "generate.octave", genOctave),
		Seed:       genSeed,
		Beats:      floatSetting(cmd, "beats", "generate.beats", genBeats),
		Tempo:      intSetting(cmd, "tempo", "generate.tempo", genTempo),
		ScaleUsage: genPercentage,
		OutputName: genOutputFile,
	}
}

func newGenerateService(cmd *cobra.Command) (*service.GenerateService, func(), error) {
	sinks, err := buildSinks(cmd.Context(), genUpload)
	if err != nil {
		return nil, nil, err
	}
	store := openHistory()
	svc := service.NewGenerateService(newLoader(), theory.DefaultRegistry(), sinks, store)
	return svc, func() { closeHistory(store) }, nil
}

func printGenerateResult(result *service.GenerateResult) error {
	fields := []output.Field{
		{Key: "Seed", Value: result.Seed},
		{Key: "Mode", Value: result.Mode},
		{Key: "Key", Value: result.Key},
	}
	if result.Mode != history.ModePitch {
		fields = append(fields,
			output.Field{Key: "Scale", Value: result.Scale},
			output.Field{Key: "Scale keys", Value: joinOrDash(result.ScaleKeys)},
		)
	}
	fields = append(fields,
		output.Field{Key: "Notes", Value: result.Notes},
		output.Field{Key: "Beats", Value: result.Beats},
		output.Field{Key: "Tempo", Value: result.Tempo},
	)
	if result.Mode == history.ModeMelody {
		fields = append(fields, output.Field{Key: "Direction patterns", Value: joinOrDash(result.Directions)})
	}
	if result.Mode != history.ModeScale {
		fields = append(fields, output.Field{Key: "Time patterns", Value: joinOrDash(result.Times)})
	}
	if result.Mode == history.ModePitch {
		fields = append(fields, output.Field{Key: "Pitch patterns", Value: joinOrDash(result.Pitches)})
	}
	for _, path := range result.Authored {
		fields = append(fields, output.Field{Key: "Authored", Value: path})
	}
	for _, out := range result.Outputs {
		fields = append(fields, output.Field{Key: "Written", Value: out.Location})
		if out.URL != "" {
			fields = append(fields, output.Field{Key: "URL", Value: out.URL})
		}
	}
	fields = append(fields, output.Field{Key: "SHA-256", Value: result.SHA256})
	if result.RunID != "" {
		fields = append(fields, output.Field{Key: "Run", Value: result.RunID})
	}

	return output.PrintRecord("Melody", result, fields)
}

func addCommonGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&genScale, "scale", "major", "Scale name (see 'melodygen scale list')")
	cmd.Flags().StringVar(&genKey, "key", "C", "Root key, e.g. C, FSharp or F#")
	cmd.Flags().IntVar(&genOctave, "octave", 3, "Starting octave")
	cmd.Flags().Int64Var(&genSeed, "seed", 0, "Seed for every random choice (default: random nine-digit seed)")
	cmd.Flags().Float64Var(&genBeats, "beats", 8, "Length of the file in beats")
	cmd.Flags().IntVar(&genTempo, "tempo", 90, "Tempo in beats per minute")
	cmd.Flags().StringVar(&genOutputFile, "output-file", service.DefaultOutputName, "Output file name, written under output.dir")
	cmd.Flags().BoolVar(&genUpload, "upload", false, "Also upload the file to the configured S3 bucket")
}

func addTimeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&genTimes, "times", service.DefaultPatternFile, "Time pattern file in time_patterns/")
	cmd.Flags().IntVar(&genTimesMin, "times-min", 1, "Minimum number of time patterns to use")
	cmd.Flags().IntVar(&genTimesMax, "times-max", 3, "Maximum number of time patterns to use")
	cmd.Flags().StringVar(&genTimeProbs, "time-probabilities", service.DefaultPatternFile, "Time probability file used to author time patterns")
	cmd.Flags().IntVar(&genTimeSize, "time-size", service.DefaultAuthorSize, "Steps per authored time pattern")
	cmd.Flags().IntVar(&genTimeCount, "time-count", service.DefaultAuthorCount, "Number of authored time patterns")
}

func init() {
	addCommonGenerateFlags(generateMelodyCmd)
	addTimeFlags(generateMelodyCmd)
	generateMelodyCmd.Flags().Float64Var(&genPercentage, "scale-percentage", 1, "Share of scale keys to remove when below 1 (0.0 to 1.0)")
	generateMelodyCmd.Flags().StringVar(&genDirections, "directions", service.DefaultPatternFile, "Direction pattern file in direction_patterns/")
	generateMelodyCmd.Flags().IntVar(&genDirectionsMin, "directions-min", 1, "Minimum number of direction patterns to use")
	generateMelodyCmd.Flags().IntVar(&genDirectionsMax, "directions-max", 3, "Maximum number of direction patterns to use")
	generateMelodyCmd.Flags().StringVar(&genDirectionProbs, "direction-probabilities", service.DefaultPatternFile, "Direction probability file used to author direction patterns")
	generateMelodyCmd.Flags().IntVar(&genDirectionSize, "direction-size", service.DefaultAuthorSize, "Jumps per authored direction pattern")
	generateMelodyCmd.Flags().IntVar(&genDirectionCount, "direction-count", service.DefaultAuthorCount, "Number of authored direction patterns")

	addCommonGenerateFlags(generatePitchCmd)
	addTimeFlags(generatePitchCmd)
	generatePitchCmd.Flags().StringVar(&genPitches, "pitches", service.DefaultPatternFile, "Pitch pattern file in pitch_patterns/")
	generatePitchCmd.Flags().IntVar(&genPitchesMin, "pitches-min", 1, "Minimum number of pitch patterns to use")
	generatePitchCmd.Flags().IntVar(&genPitchesMax, "pitches-max", 3, "Maximum number of pitch patterns to use")

	generateCmd.AddCommand(generateMelodyCmd)
	generateCmd.AddCommand(generatePitchCmd)
}
