package model

// Row holds the observed successors of one pitch. Next keeps successors in the
// order they were first observed; Counts never holds a zero entry.
type Row struct {
	Next   []uint8
	Counts map[uint8]int
}

func (r *Row) Add(next uint8) {
	if r.Counts == nil {
		r.Counts = make(map[uint8]int)
	}
	if _, ok := r.Counts[next]; !ok {
		r.Next = append(r.Next, next)
	}
	r.Counts[next]++
}

// Count returns 0 for a successor that was never observed.
func (r *Row) Count(next uint8) int {
	if r == nil {
		return 0
	}
	return r.Counts[next]
}

func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Next)
}

// TransitionTable is a first-order Markov table: previous pitch -> successors.
type TransitionTable map[uint8]*Row

func (t TransitionTable) Add(prev, next uint8) {
	row, ok := t[prev]
	if !ok {
		row = &Row{}
		t[prev] = row
	}
	row.Add(next)
}

// Row returns nil when prev has no outgoing transitions.
func (t TransitionTable) Row(prev uint8) *Row {
	return t[prev]
}

func (t TransitionTable) Count(prev, next uint8) int {
	return t.Row(prev).Count(next)
}
