package sequencer

import (
	"github.com/jsphweid/markovmidi/constants"
	"github.com/pkg/errors"
)

type Config struct {
	// most notes sounding at once across all voices
	MaxGlobalPolyphony int
	MaxVoices          int
	GridStepTicks      int
	Bars               int
	// chance that the round-robin voice starts a note on its step
	OnsetProbability float64
}

func DefaultConfig() Config {
	return Config{
		MaxGlobalPolyphony: constants.MaxGlobalPolyphony,
		MaxVoices:          constants.MaxVoices,
		GridStepTicks:      constants.GridStepTicks,
		Bars:               constants.Bars,
		OnsetProbability:   constants.OnsetProbability,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxGlobalPolyphony <= 0:
		return errors.Errorf("max global polyphony must be positive, got %d", c.MaxGlobalPolyphony)
	case c.MaxVoices <= 0:
		return errors.Errorf("max voices must be positive, got %d", c.MaxVoices)
	case c.GridStepTicks <= 0:
		return errors.Errorf("grid step must be a positive number of ticks, got %d", c.GridStepTicks)
	case c.Bars <= 0:
		return errors.Errorf("bars must be positive, got %d", c.Bars)
	case c.OnsetProbability < 0 || c.OnsetProbability > 1:
		return errors.Errorf("onset probability must be within [0, 1], got %v", c.OnsetProbability)
	}
	return nil
}

func (c Config) TotalTicks(ticksPerBeat int) int64 {
	return int64(c.Bars) * constants.BeatsPerBar * int64(ticksPerBeat)
}

func (c Config) Steps(ticksPerBeat int) int {
	return int(c.TotalTicks(ticksPerBeat) / int64(c.GridStepTicks))
}
