package sequencer

import (
	"bytes"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Summary describes a MIDI file read back from bytes
type Summary struct {
	TicksPerBeat int     `json:"ticks_per_beat"`
	Tracks       int     `json:"tracks"`
	TotalTicks   int     `json:"total_ticks"`
	Beats        float64 `json:"beats"`
	Notes        int     `json:"notes"`
	TempoMicros  uint32  `json:"tempo_micros"`
	TempoBPM     float64 `json:"tempo_bpm"`
	Pitches      []int   `json:"pitches"`
}

// Summarize parses a Standard MIDI File. Notes counts note-ons with a
// non-zero velocity; TotalTicks is the length of the longest track.
func Summarize(data []byte) (*Summary, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI file: %w", err)
	}

	summary := &Summary{
		TicksPerBeat: TicksPerBeat,
		Tracks:       len(s.Tracks),
		Pitches:      []int{},
	}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		summary.TicksPerBeat = int(mt)
	}

	for _, track := range s.Tracks {
		ticks := 0
		for _, ev := range track {
			ticks += int(ev.Delta)

			msg := ev.Message
			if len(msg) == 6 && msg[0] == 0xFF && msg[1] == 0x51 {
				summary.TempoMicros = uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
			}
			var bpm float64
			if msg.GetMetaTempo(&bpm) {
				summary.TempoBPM = bpm
			}

			var ch, key, vel uint8
			if msg.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				summary.Notes++
				summary.Pitches = append(summary.Pitches, int(key))
			}
		}
		if ticks > summary.TotalTicks {
			summary.TotalTicks = ticks
		}
	}

	if summary.TicksPerBeat > 0 {
		summary.Beats = float64(summary.TotalTicks) / float64(summary.TicksPerBeat)
	}
	return summary, nil
}
