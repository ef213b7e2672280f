package model

// Voice is a MIDI channel, 0-15.
type Voice = uint8

// NoteEvent is one completed note of a voice. Duration is in ticks and always positive.
type NoteEvent struct {
	Pitch    uint8
	Duration int64
}

type EventKind uint8

const (
	KindOther EventKind = iota
	KindNoteStart
	KindNoteEnd
	KindProgramChange
	KindTempoChange
)

func (k EventKind) String() string {
	switch k {
	case KindNoteStart:
		return "note-start"
	case KindNoteEnd:
		return "note-end"
	case KindProgramChange:
		return "program-change"
	case KindTempoChange:
		return "tempo-change"
	default:
		return "other"
	}
}

// RawEvent is a single event as delivered by an event source. Time is a delta
// relative to the previous event of the same track unless the owning Source is
// marked Absolute.
type RawEvent struct {
	Time     int64
	Kind     EventKind
	Voice    Voice
	Pitch    uint8
	Velocity uint8
	Program  uint8

	// microseconds per quarter note, only meaningful for KindTempoChange
	Tempo uint32
}

// Source is the parsed content of one corpus file.
type Source struct {
	Name         string
	TicksPerBeat int
	Tracks       [][]RawEvent
	Absolute     bool
}
