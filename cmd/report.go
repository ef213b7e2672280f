package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/pipeline"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Reads the input corpus and reports what was extracted per voice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		learned, err := LoadCorpus(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		report(cmd.OutOrStdout(), &learned)
		return nil
	},
}

func meanDuration(seq []model.NoteEvent) float64 {
	if len(seq) == 0 {
		return 0
	}
	var total int64
	for _, n := range seq {
		total += n.Duration
	}
	return float64(total) / float64(len(seq))
}

func report(w io.Writer, c *model.Corpus) {
	desc := pipeline.Describe(c)
	fmt.Fprintf(w, "ticksPerBeat: %v\n", desc.TicksPerBeat)
	fmt.Fprintf(w, "tempo: %v\n", desc.Tempo)
	fmt.Fprintf(w, "voices: %v\n", len(desc.Voices))
	for _, vs := range desc.Voices {
		program := "default"
		if vs.HasProgram {
			program = fmt.Sprintf("%v", vs.Program)
		}
		fmt.Fprintf(w, "voice %v: notes=%v transitions=%v program=%v meanDuration=%.1f\n",
			vs.Voice, vs.NumNotes, vs.Transitions, program, meanDuration(c.Sequences[vs.Voice]))
	}
}
