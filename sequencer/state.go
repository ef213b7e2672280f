package sequencer

import (
	"github.com/jsphweid/markovmidi/model"
)

// State is the mutable part of one generation run. It is never shared between runs.
type State struct {
	Voices []model.Voice

	busyUntil map[model.Voice]int64
	lastPitch map[model.Voice]uint8
	events    map[model.Voice][]model.OutputEvent
}

func NewState(voices []model.Voice) *State {
	return &State{
		Voices:    voices,
		busyUntil: make(map[model.Voice]int64),
		lastPitch: make(map[model.Voice]uint8),
		events:    make(map[model.Voice][]model.OutputEvent),
	}
}

// Busy reports whether v still sounds at tick. A voice that never played is idle.
func (s *State) Busy(v model.Voice, tick int64) bool {
	return s.busyUntil[v] > tick
}

func (s *State) ActiveCount(tick int64) int {
	var n int
	for _, v := range s.Voices {
		if s.Busy(v, tick) {
			n++
		}
	}
	return n
}

// LastPitch returns false before the voice's first note.
func (s *State) LastPitch(v model.Voice) (uint8, bool) {
	p, ok := s.lastPitch[v]
	return p, ok
}

func (s *State) Play(v model.Voice, pitch uint8, start, end int64, velocity uint8) {
	s.lastPitch[v] = pitch
	s.busyUntil[v] = end
	s.events[v] = append(s.events[v],
		model.OutputEvent{Tick: start, Kind: model.KindNoteStart, Pitch: pitch, Velocity: velocity, Channel: v},
		model.OutputEvent{Tick: end, Kind: model.KindNoteEnd, Pitch: pitch, Channel: v},
	)
}

func (s *State) Events(v model.Voice) []model.OutputEvent {
	return s.events[v]
}
