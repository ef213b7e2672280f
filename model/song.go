package model

type OutputEvent struct {
	Tick     int64
	Kind     EventKind
	Pitch    uint8
	Velocity uint8
	Channel  Voice
}

type VoiceTrack struct {
	Voice   Voice
	Program uint8
	Events  []OutputEvent
}

// Song is what the event sink persists.
type Song struct {
	TicksPerBeat int
	Tempo        uint32
	Tracks       []VoiceTrack
}

func (s *Song) NumNotes() int {
	var total int
	for _, tr := range s.Tracks {
		for _, e := range tr.Events {
			if e.Kind == KindNoteStart {
				total++
			}
		}
	}
	return total
}
