// Package pipeline wires extraction, model building and sequencing together.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/jsphweid/markovmidi/extract"
	"github.com/jsphweid/markovmidi/logger"
	"github.com/jsphweid/markovmidi/markov"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/random"
	"github.com/jsphweid/markovmidi/sequencer"
	"github.com/jsphweid/markovmidi/util"
)

type Result struct {
	Song *model.Song
	// set when the corpus held no notes; Song is nil and nothing should be written
	NothingToGenerate bool
}

// Generate builds the transition tables of corpus and sequences a new song.
// Configuration is checked before anything else.
func Generate(corpus *model.Corpus, cfg sequencer.Config, rng random.Source) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if corpus.Empty() {
		logger.Info("no notes found in corpus, nothing to generate", nil)
		return Result{NothingToGenerate: true}, nil
	}

	activity := logger.Fields{}
	for _, v := range util.SortedKeys(corpus.Sequences) {
		activity[voiceKey(v)] = len(corpus.Sequences[v])
	}
	logger.Info("voices found (activity)", activity)

	tables := markov.Build(corpus.Sequences)
	seq, err := sequencer.New(cfg, corpus, tables, rng)
	if err != nil {
		return Result{}, err
	}
	song := seq.Run()

	var used []model.Voice
	for _, tr := range song.Tracks {
		used = append(used, tr.Voice)
	}
	logger.Info("generated", logger.Fields{"voices": used, "notes": song.NumNotes()})
	return Result{Song: song}, nil
}

// Run extracts a corpus from sources and generates from it.
func Run(sources []model.Source, cfg sequencer.Config, rng random.Source) (Result, error) {
	corpus := extract.Extract(sources)
	return Generate(&corpus, cfg, rng)
}

func voiceKey(v model.Voice) string {
	return fmt.Sprintf("voice_%d", v)
}

// Describe summarises a corpus per voice, busiest voices first.
func Describe(c *model.Corpus) model.CorpusResponse {
	tables := markov.Build(c.Sequences)
	res := model.CorpusResponse{TicksPerBeat: c.TicksPerBeat, Tempo: c.Tempo, Voices: []model.VoiceStats{}}
	for _, v := range util.SortedKeys(c.Sequences) {
		program, ok := c.Programs[v]
		var transitions int
		for _, row := range tables[v] {
			for _, n := range row.Counts {
				transitions += n
			}
		}
		res.Voices = append(res.Voices, model.VoiceStats{
			Voice:       v,
			NumNotes:    len(c.Sequences[v]),
			Program:     program,
			HasProgram:  ok,
			Transitions: transitions,
		})
	}
	sort.SliceStable(res.Voices, func(i, j int) bool {
		return res.Voices[i].NumNotes > res.Voices[j].NumNotes
	})
	return res
}
