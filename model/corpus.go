package model

// Corpus is everything learned from a batch of sources.
type Corpus struct {
	Sequences    map[Voice][]NoteEvent
	Programs     map[Voice]uint8
	TicksPerBeat int
	Tempo        uint32
}

func (c *Corpus) Empty() bool {
	for _, seq := range c.Sequences {
		if len(seq) > 0 {
			return false
		}
	}
	return true
}

// Pool returns every pitch the voice has used, in extraction order, repeats included.
func (c *Corpus) Pool(v Voice) []uint8 {
	seq := c.Sequences[v]
	res := make([]uint8, 0, len(seq))
	for _, n := range seq {
		res = append(res, n.Pitch)
	}
	return res
}
