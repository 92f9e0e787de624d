package sim

import (
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/sandfall/internal/cave"
)

// pathStack is the path of the last grains, from the source (bottom) down to where the next
// grain should start falling (top).
//
// A new grain would retrace the path from the source down to the top cell anyway, since the
// only cell that changed is the one where the previous grain settled, and that one is popped.
type pathStack struct {
	cells []cave.Pos
}

func newPathStack(source cave.Pos) *pathStack {
	return &pathStack{cells: []cave.Pos{source}}
}

// Top returns the most recently pushed cell.
func (s *pathStack) Top() cave.Pos {
	if len(s.cells) == 0 {
		exceptions.Panicf("sim: path stack is empty")
	}
	return s.cells[len(s.cells)-1]
}

// Push a cell visited by the falling grain.
func (s *pathStack) Push(pos cave.Pos) {
	s.cells = append(s.cells, pos)
}

// Pop removes the top cell, where the last grain settled.
func (s *pathStack) Pop() cave.Pos {
	top := s.Top()
	s.cells = s.cells[:len(s.cells)-1]
	return top
}

// Len returns the number of cells in the path.
func (s *pathStack) Len() int {
	return len(s.cells)
}
