package model

// GenerateRequest overrides generation settings for one request. Nil fields
// keep the server defaults.
type GenerateRequest struct {
	MaxGlobalPolyphony *int     `json:"maxGlobalPolyphony,omitempty"`
	MaxVoices          *int     `json:"maxVoices,omitempty"`
	GridStepTicks      *int     `json:"gridStepTicks,omitempty"`
	Bars               *int     `json:"bars,omitempty"`
	OnsetProbability   *float64 `json:"onsetProbability,omitempty"`
	Seed               *int64   `json:"seed,omitempty"`
}

type VoiceStats struct {
	Voice       Voice `json:"voice"`
	NumNotes    int   `json:"num_notes"`
	Program     uint8 `json:"program"`
	HasProgram  bool  `json:"has_program"`
	Transitions int   `json:"transitions"`
}

type CorpusResponse struct {
	TicksPerBeat int          `json:"ticks_per_beat"`
	Tempo        uint32       `json:"tempo"`
	Voices       []VoiceStats `json:"voices"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
