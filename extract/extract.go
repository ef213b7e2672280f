package extract

import (
	"sort"

	"github.com/jsphweid/markovmidi/constants"
	"github.com/jsphweid/markovmidi/model"
)

type timedEvent struct {
	abs int64
	model.RawEvent
}

// flatten merges all tracks of a source into one list ordered by absolute
// tick. Events sharing a tick keep their track order.
func flatten(s model.Source) []timedEvent {
	var res []timedEvent
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			if s.Absolute {
				absTicks = event.Time
			} else {
				absTicks += event.Time
			}
			res = append(res, timedEvent{abs: absTicks, RawEvent: event})
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].abs < res[j].abs
	})
	return res
}

func isNoteEnd(e model.RawEvent) bool {
	return e.Kind == model.KindNoteEnd || (e.Kind == model.KindNoteStart && e.Velocity == 0)
}

// FallbackDuration replaces measured durations that are zero or negative.
func FallbackDuration(ticksPerBeat int) int64 {
	return max(int64(ticksPerBeat/4), 1)
}

// Extract pairs note starts with their ends per voice and collects the last
// seen tempo and per-voice programs. Sources are consumed in the given order.
func Extract(sources []model.Source) model.Corpus {
	c := model.Corpus{
		Sequences:    make(map[model.Voice][]model.NoteEvent),
		Programs:     make(map[model.Voice]uint8),
		TicksPerBeat: constants.DefaultTicksPerBeat,
		Tempo:        constants.DefaultTempo,
	}

	for _, s := range sources {
		if s.TicksPerBeat > 0 {
			c.TicksPerBeat = s.TicksPerBeat
		}
		fallback := FallbackDuration(c.TicksPerBeat)

		// voice -> sounding pitch -> start tick
		pressed := make(map[model.Voice]map[uint8]int64)
		for _, evt := range flatten(s) {
			switch {
			case evt.Kind == model.KindTempoChange:
				c.Tempo = evt.Tempo
			case evt.Kind == model.KindProgramChange:
				c.Programs[evt.Voice] = evt.Program
			case isNoteEnd(evt.RawEvent):
				start, ok := pressed[evt.Voice][evt.Pitch]
				if !ok {
					continue
				}
				delete(pressed[evt.Voice], evt.Pitch)
				dur := evt.abs - start
				if dur <= 0 {
					dur = fallback
				}
				c.Sequences[evt.Voice] = append(c.Sequences[evt.Voice], model.NoteEvent{Pitch: evt.Pitch, Duration: dur})
			case evt.Kind == model.KindNoteStart:
				if pressed[evt.Voice] == nil {
					pressed[evt.Voice] = make(map[uint8]int64)
				}
				// a repeated start of a sounding pitch overwrites the earlier one
				pressed[evt.Voice][evt.Pitch] = evt.abs
			}
		}
	}
	return c
}
