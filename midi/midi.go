package midi

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/jsphweid/markovmidi/constants"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const microsPerMinute = 60000000

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	return ReadMidi(bytes.NewReader(dat))
}

func ReadMidi(r io.Reader) (s *smf.SMF, e error) {
	// gomidi panics on some malformed files
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if rec := recover(); rec != nil {
			s = nil
			e = errors.Errorf("error parsing midi file... %v", rec)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

func TicksPerBeat(s *smf.SMF) int {
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok && mt > 0 {
		return int(mt)
	}
	return constants.DefaultTicksPerBeat
}

func bpmToTempo(bpm float64) uint32 {
	return uint32(math.Round(microsPerMinute / bpm))
}

func tempoToBPM(tempo uint32) float64 {
	if tempo == 0 {
		tempo = constants.DefaultTempo
	}
	return microsPerMinute / float64(tempo)
}

func toRawEvent(event smf.Event) model.RawEvent {
	res := model.RawEvent{Time: int64(event.Delta)}
	msg := midi.Message(event.Message)
	var channel, key, velocity, program uint8
	var bpm float64
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		res.Kind = model.KindNoteStart
	case msg.GetNoteOff(&channel, &key, &velocity):
		res.Kind = model.KindNoteEnd
	case msg.GetProgramChange(&channel, &program):
		res.Kind = model.KindProgramChange
	case event.Message.GetMetaTempo(&bpm) && bpm > 0:
		res.Kind = model.KindTempoChange
		res.Tempo = bpmToTempo(bpm)
	}
	res.Voice = channel
	res.Pitch = key
	res.Velocity = velocity
	res.Program = program
	return res
}

// ToSource converts a parsed file into delta-timed raw events, one list per track.
func ToSource(name string, s *smf.SMF) model.Source {
	src := model.Source{
		Name:         name,
		TicksPerBeat: TicksPerBeat(s),
	}
	for _, track := range s.Tracks {
		var events []model.RawEvent
		var pending int64
		for _, event := range track {
			e := toRawEvent(event)
			// keep the time of dropped events so later deltas stay correct
			if e.Kind == model.KindOther {
				pending += e.Time
				continue
			}
			e.Time += pending
			pending = 0
			events = append(events, e)
		}
		src.Tracks = append(src.Tracks, events)
	}
	return src
}

func toMessage(e model.OutputEvent) midi.Message {
	if e.Kind == model.KindNoteStart {
		return midi.NoteOn(e.Channel, e.Pitch, e.Velocity)
	}
	return midi.NoteOff(e.Channel, e.Pitch)
}

// Encode builds one track per voice. The tempo goes on the first track only.
func Encode(song *model.Song) (*smf.SMF, error) {
	res := smf.New()
	tpb := song.TicksPerBeat
	if tpb <= 0 {
		tpb = constants.DefaultTicksPerBeat
	}
	res.TimeFormat = smf.MetricTicks(tpb)

	for i, vt := range song.Tracks {
		var track smf.Track
		if i == 0 {
			track.Add(0, smf.MetaTempo(tempoToBPM(song.Tempo)))
		}
		track.Add(0, midi.ProgramChange(vt.Voice, vt.Program))

		var prevTick int64
		for _, e := range vt.Events {
			delta := max(e.Tick-prevTick, 0)
			track.Add(uint32(delta), toMessage(e))
			prevTick = e.Tick
		}
		track.Close(0)
		if err := res.Add(track); err != nil {
			return nil, errors.Wrapf(err, "error adding track for voice %d", vt.Voice)
		}
	}
	return res, nil
}

func WriteSong(w io.Writer, song *model.Song) error {
	s, err := Encode(song)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "error writing midi")
	}
	return nil
}

func WriteMidiFile(path string, song *model.Song) error {
	if err := util.EnsureParentDir(path); err != nil {
		return errors.Wrapf(err, "could not create output dir for %v", path)
	}
	buf := new(bytes.Buffer)
	if err := WriteSong(buf, song); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0666); err != nil {
		return errors.Wrapf(err, "write failed for %v", path)
	}
	return nil
}
