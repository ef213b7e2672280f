// Package selector picks the next pitch of a voice from its transition table.
package selector

import (
	"math"

	"github.com/jsphweid/markovmidi/constants"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/random"
)

const (
	// intervals are measured against a perfect fifth
	neutralInterval = 7.0
	stepPreference  = 1.2
)

// Lead weighs a candidate by its distance from the previous pitch: 1 for a
// repeat, falling off as the interval grows.
func Lead(interval int) float64 {
	if interval < 0 {
		interval = -interval
	}
	if interval == 0 {
		return 1
	}
	return 1 / (1 + math.Pow(float64(interval)/neutralInterval, stepPreference))
}

// Select returns the next pitch. row holds the successors observed after prev
// and may be nil. hasPrev is false before the voice's first note.
func Select(rng random.Source, row *model.Row, prev uint8, hasPrev bool, pool []uint8) uint8 {
	if row.Len() > 0 {
		weights := make([]float64, len(row.Next))
		var total float64
		for i, p := range row.Next {
			interval := 0
			if hasPrev {
				interval = int(p) - int(prev)
			}
			weights[i] = float64(row.Counts[p]) * Lead(interval)
			total += weights[i]
		}
		if total <= 0 {
			return row.Next[0]
		}
		r := rng.Float64() * total
		var s float64
		for i, w := range weights {
			s += w
			if r <= s {
				return row.Next[i]
			}
		}
		return row.Next[len(row.Next)-1]
	}
	if len(pool) > 0 {
		return pool[rng.Intn(len(pool))]
	}
	return constants.DefaultPitch
}
