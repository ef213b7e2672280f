package constants

import "os"

func GetInputDir() string {
	path := os.Getenv("INPUT_DIR")
	if path != "" {
		return path
	}
	return "./midi"
}

func GetOutputPath() string {
	path := os.Getenv("OUTPUT_PATH")
	if path != "" {
		return path
	}
	return "./audio/generated_clean.mid"
}

func GetCorpusPath() string {
	path := os.Getenv("CORPUS_PATH")
	if path != "" {
		return path
	}
	return "./out/corpus.dat"
}

// Tunable generation defaults.
const (
	MaxGlobalPolyphony = 5
	MaxVoices          = 5
	GridStepTicks      = 240 // an eighth note at 480 ticks per beat
	Bars               = 32
	OnsetProbability   = 0.55
)

const (
	DefaultTicksPerBeat = 480
	DefaultTempo        = 500000 // microseconds per quarter, 120 bpm
	DefaultPitch        = 60     // middle C
	DefaultProgram      = 6
	NoteVelocity        = 96
	BeatsPerBar         = 4
)

// DefaultVoices is used when the corpus yields no voices at all.
var DefaultVoices = []uint8{0, 1, 2, 3}
