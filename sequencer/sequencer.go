package sequencer

import (
	"sort"

	"github.com/jsphweid/markovmidi/constants"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/random"
	"github.com/jsphweid/markovmidi/selector"
	"github.com/jsphweid/markovmidi/util"
	"github.com/pkg/errors"
)

var (
	lengths        = []int{1, 2, 4}
	lengthWeights  = []float64{0.6, 0.3, 0.1}
	crowdedLengths = []int{1, 2}
	crowdedWeights = []float64{0.9, 0.1}
)

// SelectVoices ranks voices by how many notes were extracted for them and
// keeps the busiest max. Equal counts are ordered by voice id.
func SelectVoices(sequences map[model.Voice][]model.NoteEvent, maxVoices int) []model.Voice {
	voices := util.SortedKeys(sequences)
	sort.SliceStable(voices, func(i, j int) bool {
		return len(sequences[voices[i]]) > len(sequences[voices[j]])
	})
	voices = voices[:util.Min(len(voices), maxVoices)]
	if len(voices) == 0 {
		voices = append(voices, constants.DefaultVoices...)
	}
	return voices
}

type Sequencer struct {
	cfg    Config
	corpus *model.Corpus
	tables map[model.Voice]model.TransitionTable
	rng    random.Source
	pools  map[model.Voice][]uint8
}

func New(cfg Config, corpus *model.Corpus, tables map[model.Voice]model.TransitionTable, rng random.Source) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid generation config")
	}
	if corpus.TicksPerBeat <= 0 {
		return nil, errors.Errorf("ticks per beat must be positive, got %d", corpus.TicksPerBeat)
	}
	pools := make(map[model.Voice][]uint8, len(corpus.Sequences))
	for v := range corpus.Sequences {
		pools[v] = corpus.Pool(v)
	}
	return &Sequencer{cfg: cfg, corpus: corpus, tables: tables, rng: rng, pools: pools}, nil
}

// Run generates one song. Every call starts from a fresh State.
func (s *Sequencer) Run() *model.Song {
	state := NewState(SelectVoices(s.corpus.Sequences, s.cfg.MaxVoices))
	steps := s.cfg.Steps(s.corpus.TicksPerBeat)
	for step := 0; step < steps; step++ {
		s.Step(state, step)
	}
	return s.assemble(state)
}

// Step gives the round-robin voice of this step its chance to start a note.
func (s *Sequencer) Step(state *State, step int) {
	grid := int64(s.cfg.GridStepTicks)
	tick := int64(step) * grid
	globalActive := state.ActiveCount(tick)
	v := state.Voices[step%len(state.Voices)]

	if state.Busy(v, tick) || globalActive >= s.cfg.MaxGlobalPolyphony {
		return
	}
	if s.rng.Float64() >= s.cfg.OnsetProbability {
		return
	}

	var steps int
	if globalActive >= s.cfg.MaxGlobalPolyphony-1 {
		steps = crowdedLengths[s.rng.Choice(crowdedWeights)]
	} else {
		steps = lengths[s.rng.Choice(lengthWeights)]
	}

	prev, hasPrev := state.LastPitch(v)
	var row *model.Row
	if hasPrev {
		row = s.tables[v].Row(prev)
	}
	pitch := selector.Select(s.rng, row, prev, hasPrev, s.pools[v])
	state.Play(v, pitch, tick, tick+int64(steps)*grid, constants.NoteVelocity)
}

func (s *Sequencer) assemble(state *State) *model.Song {
	song := &model.Song{
		TicksPerBeat: s.corpus.TicksPerBeat,
		Tempo:        s.corpus.Tempo,
	}
	voices := append([]model.Voice(nil), state.Voices...)
	sort.Slice(voices, func(i, j int) bool {
		return voices[i] < voices[j]
	})
	for _, v := range voices {
		events := append([]model.OutputEvent(nil), state.Events(v)...)
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Tick < events[j].Tick
		})
		program, ok := s.corpus.Programs[v]
		if !ok {
			program = constants.DefaultProgram
		}
		song.Tracks = append(song.Tracks, model.VoiceTrack{Voice: v, Program: program, Events: events})
	}
	return song
}

// Generate validates the configuration and runs a single generation.
func Generate(cfg Config, corpus *model.Corpus, tables map[model.Voice]model.TransitionTable, rng random.Source) (*model.Song, error) {
	seq, err := New(cfg, corpus, tables, rng)
	if err != nil {
		return nil, err
	}
	return seq.Run(), nil
}
