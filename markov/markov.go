package markov

import (
	"github.com/jsphweid/markovmidi/model"
)

// BuildTable counts every consecutive pitch pair of seq. Sequences shorter
// than two notes give an empty table.
func BuildTable(seq []model.NoteEvent) model.TransitionTable {
	table := make(model.TransitionTable)
	for i := 0; i+1 < len(seq); i++ {
		table.Add(seq[i].Pitch, seq[i+1].Pitch)
	}
	return table
}

func Build(sequences map[model.Voice][]model.NoteEvent) map[model.Voice]model.TransitionTable {
	res := make(map[model.Voice]model.TransitionTable, len(sequences))
	for voice, seq := range sequences {
		res[voice] = BuildTable(seq)
	}
	return res
}
