package sequencer

import (
	"fmt"
	"testing"

	"github.com/jsphweid/markovmidi/markov"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notes(pitches ...uint8) []model.NoteEvent {
	var res []model.NoteEvent
	for _, p := range pitches {
		res = append(res, model.NoteEvent{Pitch: p, Duration: 240})
	}
	return res
}

func testCorpus() *model.Corpus {
	return &model.Corpus{
		Sequences: map[model.Voice][]model.NoteEvent{
			0: notes(60, 62, 64, 65, 67, 65, 64, 62, 60),
			1: notes(48, 55, 48, 55, 43, 48),
			2: notes(72, 74, 76, 74, 72, 71, 72),
			3: notes(36, 36, 38, 36),
			5: notes(79, 81, 83, 84, 83, 81, 79, 77),
			9: notes(42, 42, 42, 42, 42, 42, 42, 42, 42, 42),
			4: notes(50),
		},
		Programs:     map[model.Voice]uint8{0: 1, 1: 33, 9: 0},
		TicksPerBeat: 480,
		Tempo:        450000,
	}
}

type note struct {
	voice      model.Voice
	start, end int64
}

func collectNotes(t *testing.T, song *model.Song) []note {
	var res []note
	for _, tr := range song.Tracks {
		open := map[uint8]int64{}
		for _, e := range tr.Events {
			assert.Equal(t, tr.Voice, e.Channel)
			switch e.Kind {
			case model.KindNoteStart:
				_, dup := open[e.Pitch]
				require.False(t, dup, "voice %d restarted pitch %d", tr.Voice, e.Pitch)
				open[e.Pitch] = e.Tick
			case model.KindNoteEnd:
				start, ok := open[e.Pitch]
				require.True(t, ok, "voice %d ended pitch %d that was not sounding", tr.Voice, e.Pitch)
				delete(open, e.Pitch)
				res = append(res, note{voice: tr.Voice, start: start, end: e.Tick})
			}
		}
		assert.Empty(t, open)
	}
	return res
}

func generate(t *testing.T, cfg Config, corpus *model.Corpus, seed int64) *model.Song {
	song, err := Generate(cfg, corpus, markov.Build(corpus.Sequences), random.NewSeeded(seed))
	require.NoError(t, err)
	return song
}

func TestGeneratedNotesRespectConstraints(t *testing.T) {
	configs := []Config{
		DefaultConfig(),
		{MaxGlobalPolyphony: 1, MaxVoices: 5, GridStepTicks: 240, Bars: 16, OnsetProbability: 1},
		{MaxGlobalPolyphony: 2, MaxVoices: 3, GridStepTicks: 120, Bars: 8, OnsetProbability: 0.9},
		{MaxGlobalPolyphony: 8, MaxVoices: 8, GridStepTicks: 60, Bars: 4, OnsetProbability: 1},
	}
	for i, cfg := range configs {
		for seed := int64(1); seed <= 5; seed++ {
			t.Run(fmt.Sprintf("config %d seed %d", i, seed), func(t *testing.T) {
				song := generate(t, cfg, testCorpus(), seed)
				played := collectNotes(t, song)
				grid := int64(cfg.GridStepTicks)

				onsets := map[int64]bool{}
				byVoice := map[model.Voice][]note{}
				for _, n := range played {
					assert.Greater(t, n.end, n.start)
					assert.Zero(t, n.start%grid)
					assert.False(t, onsets[n.start], "two onsets at tick %d", n.start)
					onsets[n.start] = true
					byVoice[n.voice] = append(byVoice[n.voice], n)
				}

				for v, ns := range byVoice {
					for j := 1; j < len(ns); j++ {
						assert.GreaterOrEqual(t, ns[j].start, ns[j-1].end, "voice %d overlaps itself", v)
					}
				}

				total := cfg.TotalTicks(480)
				for tick := int64(0); tick < total+4*grid; tick += grid {
					var sounding int
					for _, n := range played {
						if n.start <= tick && tick < n.end {
							sounding++
						}
					}
					assert.LessOrEqual(t, sounding, cfg.MaxGlobalPolyphony, "tick %d", tick)
				}
			})
		}
	}
}

func TestOnsetsFollowRoundRobin(t *testing.T) {
	cfg := Config{MaxGlobalPolyphony: 5, MaxVoices: 3, GridStepTicks: 240, Bars: 8, OnsetProbability: 1}
	corpus := testCorpus()
	voices := SelectVoices(corpus.Sequences, cfg.MaxVoices)
	song := generate(t, cfg, corpus, 3)

	for _, n := range collectNotes(t, song) {
		step := int(n.start / int64(cfg.GridStepTicks))
		assert.Equal(t, voices[step%len(voices)], n.voice)
	}
}

func TestSameSeedIsReproducible(t *testing.T) {
	a := generate(t, DefaultConfig(), testCorpus(), 99)
	b := generate(t, DefaultConfig(), testCorpus(), 99)
	assert.Equal(t, a, b)
	assert.NotZero(t, a.NumNotes())
}

func TestSelectVoices(t *testing.T) {
	seqs := map[model.Voice][]model.NoteEvent{
		7: notes(1, 2),
		3: notes(1, 2, 3),
		1: notes(1, 2),
		4: notes(1, 2),
		0: notes(1),
	}

	assert := assert.New(t)
	assert.Equal([]model.Voice{3, 1, 4, 7, 0}, SelectVoices(seqs, 10))
	assert.Equal([]model.Voice{3, 1, 4}, SelectVoices(seqs, 3))
	for i := 0; i < 20; i++ {
		assert.Equal([]model.Voice{3, 1}, SelectVoices(seqs, 2))
	}
	assert.Equal([]model.Voice{0, 1, 2, 3}, SelectVoices(nil, 5))
}

func TestTracksAreOrderedWithProgramsAndTempo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnsetProbability = 0
	song := generate(t, cfg, testCorpus(), 1)

	assert := assert.New(t)
	assert.Equal(480, song.TicksPerBeat)
	assert.Equal(uint32(450000), song.Tempo)
	require.Len(t, song.Tracks, 5)

	// busiest five: 9 (10 notes), 0 (9), 5 (8), 2 (7), 1 (6)
	var voices []model.Voice
	for _, tr := range song.Tracks {
		voices = append(voices, tr.Voice)
		assert.Empty(tr.Events)
	}
	assert.Equal([]model.Voice{0, 1, 2, 5, 9}, voices)
	assert.Equal(uint8(1), song.Tracks[0].Program)
	assert.Equal(uint8(33), song.Tracks[1].Program)
	assert.Equal(uint8(6), song.Tracks[2].Program)
	assert.Equal(uint8(6), song.Tracks[3].Program)
	assert.Equal(uint8(0), song.Tracks[4].Program)
	assert.Zero(song.NumNotes())
}

func TestEventsAreSortedByTick(t *testing.T) {
	song := generate(t, Config{MaxGlobalPolyphony: 3, MaxVoices: 2, GridStepTicks: 240, Bars: 8, OnsetProbability: 1}, testCorpus(), 5)
	for _, tr := range song.Tracks {
		for i := 1; i < len(tr.Events); i++ {
			assert.LessOrEqual(t, tr.Events[i-1].Tick, tr.Events[i].Tick)
		}
	}
}

type recordingSource struct {
	random.Scripted
	weights [][]float64
}

func (r *recordingSource) Choice(weights []float64) int {
	r.weights = append(r.weights, weights)
	return r.Scripted.Choice(weights)
}

func TestCrowdedVoicesGetShortNotes(t *testing.T) {
	corpus := &model.Corpus{
		Sequences:    map[model.Voice][]model.NoteEvent{0: notes(60, 62), 1: notes(50, 52)},
		TicksPerBeat: 480,
	}
	cfg := Config{MaxGlobalPolyphony: 2, MaxVoices: 2, GridStepTicks: 240, Bars: 1, OnsetProbability: 1}
	rng := &recordingSource{Scripted: random.Scripted{Choices: []int{1, 1}}}
	seq, err := New(cfg, corpus, markov.Build(corpus.Sequences), rng)
	require.NoError(t, err)

	state := NewState([]model.Voice{0, 1})
	seq.Step(state, 0)
	seq.Step(state, 1)

	require.Len(t, rng.weights, 2)
	assert.Equal(t, []float64{0.6, 0.3, 0.1}, rng.weights[0])
	assert.Equal(t, []float64{0.9, 0.1}, rng.weights[1])
	events := state.Events(1)
	require.Len(t, events, 2)
	assert.Equal(t, int64(240), events[0].Tick)
	assert.Equal(t, int64(240+480), events[1].Tick)
	assert.Equal(t, 2, state.ActiveCount(240))
}

func TestLengthChoiceWhenRoomy(t *testing.T) {
	corpus := &model.Corpus{
		Sequences:    map[model.Voice][]model.NoteEvent{0: notes(60, 62)},
		TicksPerBeat: 480,
	}
	cfg := Config{MaxGlobalPolyphony: 4, MaxVoices: 1, GridStepTicks: 240, Bars: 1, OnsetProbability: 1}
	seq, err := New(cfg, corpus, markov.Build(corpus.Sequences), &random.Scripted{Choices: []int{2}})
	require.NoError(t, err)

	state := NewState([]model.Voice{0})
	seq.Step(state, 0)

	events := state.Events(0)
	require.Len(t, events, 2)
	assert.Equal(t, int64(4*240), events[1].Tick)
	assert.True(t, state.Busy(0, 959))
	assert.False(t, state.Busy(0, 960))
}

func TestBusyVoiceSkipsDraws(t *testing.T) {
	corpus := &model.Corpus{
		Sequences:    map[model.Voice][]model.NoteEvent{0: notes(60, 62)},
		TicksPerBeat: 480,
	}
	cfg := Config{MaxGlobalPolyphony: 4, MaxVoices: 1, GridStepTicks: 240, Bars: 1, OnsetProbability: 1}
	rng := &random.Scripted{Choices: []int{1}}
	seq, err := New(cfg, corpus, markov.Build(corpus.Sequences), rng)
	require.NoError(t, err)

	state := NewState([]model.Voice{0})
	seq.Step(state, 0)
	floatsBefore, _, _ := rng.Calls()
	seq.Step(state, 1)
	floatsAfter, _, _ := rng.Calls()

	assert.Equal(t, floatsBefore, floatsAfter)
	assert.Len(t, state.Events(0), 2)
	seq.Step(state, 2)
	assert.Len(t, state.Events(0), 4)
}

func TestFirstNoteComesFromPoolThenTable(t *testing.T) {
	corpus := &model.Corpus{
		Sequences:    map[model.Voice][]model.NoteEvent{0: notes(60, 67)},
		TicksPerBeat: 480,
	}
	cfg := Config{MaxGlobalPolyphony: 4, MaxVoices: 1, GridStepTicks: 240, Bars: 1, OnsetProbability: 1}
	seq, err := New(cfg, corpus, markov.Build(corpus.Sequences), &random.Scripted{Ints: []int{0}})
	require.NoError(t, err)

	state := NewState([]model.Voice{0})
	seq.Step(state, 0)
	seq.Step(state, 1)

	events := state.Events(0)
	require.Len(t, events, 4)
	assert.Equal(t, uint8(60), events[0].Pitch)
	assert.Equal(t, uint8(67), events[2].Pitch)
	assert.Equal(t, uint8(96), events[0].Velocity)
	last, ok := state.LastPitch(0)
	assert.True(t, ok)
	assert.Equal(t, uint8(67), last)
}

func TestEmptyCorpusUsesDefaultVoicesAndMiddleC(t *testing.T) {
	corpus := &model.Corpus{Sequences: map[model.Voice][]model.NoteEvent{}, TicksPerBeat: 480}
	song := generate(t, Config{MaxGlobalPolyphony: 5, MaxVoices: 5, GridStepTicks: 240, Bars: 2, OnsetProbability: 1}, corpus, 1)

	require.Len(t, song.Tracks, 4)
	for _, tr := range song.Tracks {
		for _, e := range tr.Events {
			assert.Equal(t, uint8(60), e.Pitch)
		}
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	cases := map[string]func(*Config){
		"polyphony":   func(c *Config) { c.MaxGlobalPolyphony = 0 },
		"voices":      func(c *Config) { c.MaxVoices = -1 },
		"grid":        func(c *Config) { c.GridStepTicks = 0 },
		"bars":        func(c *Config) { c.Bars = 0 },
		"probability": func(c *Config) { c.OnsetProbability = 1.5 },
		"negative p":  func(c *Config) { c.OnsetProbability = -0.1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := Generate(cfg, testCorpus(), nil, random.NewSeeded(1))
			assert.Error(t, err)
		})
	}

	corpus := testCorpus()
	corpus.TicksPerBeat = 0
	_, err := Generate(DefaultConfig(), corpus, nil, random.NewSeeded(1))
	assert.Error(t, err)
}

func TestStepCount(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(32*4*480), cfg.TotalTicks(480))
	assert.Equal(t, 256, cfg.Steps(480))
	assert.Equal(t, 1, Config{Bars: 1, GridStepTicks: 7}.Steps(2))
}
