package random

// Scripted replays fixed draws. Once a script is exhausted it keeps returning
// its last value (or zero when empty).
type Scripted struct {
	Floats  []float64
	Ints    []int
	Choices []int

	floatCalls, intCalls, choiceCalls int
}

func (s *Scripted) Float64() float64 {
	return next(s.Floats, &s.floatCalls)
}

func (s *Scripted) Intn(n int) int {
	v := next(s.Ints, &s.intCalls)
	if n <= 0 {
		return 0
	}
	return v % n
}

func (s *Scripted) Choice(weights []float64) int {
	if len(s.Choices) == 0 {
		s.choiceCalls++
		return WeightedIndex(0, weights)
	}
	v := next(s.Choices, &s.choiceCalls)
	if v >= len(weights) {
		return len(weights) - 1
	}
	return v
}

// Calls reports how many draws of each kind were taken.
func (s *Scripted) Calls() (floats, ints, choices int) {
	return s.floatCalls, s.intCalls, s.choiceCalls
}

func next[A any](script []A, calls *int) A {
	var zero A
	i := *calls
	*calls++
	if len(script) == 0 {
		return zero
	}
	if i >= len(script) {
		return script[len(script)-1]
	}
	return script[i]
}
