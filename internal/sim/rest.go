package sim

import (
	"github.com/janpfeifer/sandfall/internal/cave"
)

// Candidates returns the cells a grain at pos tries to move to, in priority order:
// straight down, then down-left, then down-right.
func Candidates(pos cave.Pos) [3]cave.Pos {
	return [3]cave.Pos{pos.Down(), pos.DownLeft(), pos.DownRight()}
}

// Step applies the rest rule once: it returns the first free candidate cell and true, or pos
// and false if the grain is at rest.
func Step(m *cave.Map, pos cave.Pos) (next cave.Pos, moved bool) {
	for _, candidate := range Candidates(pos) {
		if !m.Has(candidate) {
			return candidate, true
		}
	}
	return pos, false
}

// CanMove returns whether at least one of the candidate cells below pos is free.
func CanMove(m *cave.Map, pos cave.Pos) bool {
	_, moved := Step(m, pos)
	return moved
}

// Fall moves a grain from start with the rest rule until it is at rest or it reaches limitY.
//
// It returns the final position and the number of moves taken.
// If visit is not nil, it is called with every new position, in order.
func Fall(m *cave.Map, start cave.Pos, limitY int, visit func(cave.Pos)) (pos cave.Pos, moves int) {
	pos = start
	for pos.Y() < limitY {
		next, moved := Step(m, pos)
		if !moved {
			break
		}
		pos = next
		moves++
		if visit != nil {
			visit(pos)
		}
	}
	return
}
