package cave

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Pos packages x, y position. Y grows downwards: y=0 is the top of the cave.
type Pos [2]int

// X coordinate of the position.
func (pos Pos) X() int {
	return pos[0]
}

// Y coordinate of the position.
func (pos Pos) Y() int {
	return pos[1]
}

// Down returns the position straight below.
func (pos Pos) Down() Pos {
	return Pos{pos[0], pos[1] + 1}
}

// DownLeft returns the position diagonally below to the left.
func (pos Pos) DownLeft() Pos {
	return Pos{pos[0] - 1, pos[1] + 1}
}

// DownRight returns the position diagonally below to the right.
func (pos Pos) DownRight() Pos {
	return Pos{pos[0] + 1, pos[1] + 1}
}

// String returns a text representation of Pos.
func (pos Pos) String() string {
	return fmt.Sprintf("(%d, %d)", pos[0], pos[1])
}

// ComparePos orders positions by y first and then x, top-left first.
func ComparePos(a, b Pos) int {
	if c := cmp.Compare(a[1], b[1]); c != 0 {
		return c
	}
	return cmp.Compare(a[0], b[0])
}

// SortPositions sorts according to y first and then x.
func SortPositions(positions []Pos) {
	slices.SortFunc(positions, ComparePos)
}

// PosStrings converts each position to its string representation.
func PosStrings(poss []Pos) []string {
	strs := make([]string, len(poss))
	for ii, pos := range poss {
		strs[ii] = pos.String()
	}
	return strs
}

// Polyline is a sequence of vertices, each consecutive pair defining one rock Segment.
type Polyline []Pos

// Segments returns the segments joining consecutive vertices.
// A polyline with a single vertex returns one degenerate segment (a single cell).
func (p Polyline) Segments() []Segment {
	if len(p) == 1 {
		return []Segment{{p[0], p[0]}}
	}
	var segments []Segment
	for ii := 1; ii < len(p); ii++ {
		segments = append(segments, Segment{From: p[ii-1], To: p[ii]})
	}
	return segments
}

// String returns the polyline in the "x,y -> x,y" notation.
func (p Polyline) String() string {
	parts := make([]string, len(p))
	for ii, pos := range p {
		parts[ii] = fmt.Sprintf("%d,%d", pos[0], pos[1])
	}
	return strings.Join(parts, " -> ")
}

// Segment is a straight horizontal or vertical run of rock, endpoints included.
type Segment struct {
	From, To Pos
}

// IsAxisAligned returns whether the segment is horizontal or vertical (or a single cell).
func (s Segment) IsAxisAligned() bool {
	return s.From[0] == s.To[0] || s.From[1] == s.To[1]
}

// Cells expands the segment into its unit cells, both endpoints included.
//
// It returns nil if the segment is not axis-aligned.
func (s Segment) Cells() []Pos {
	if !s.IsAxisAligned() {
		return nil
	}
	if s.From[0] != s.To[0] {
		y := s.From[1]
		minX, maxX := min(s.From[0], s.To[0]), max(s.From[0], s.To[0])
		cells := make([]Pos, 0, maxX-minX+1)
		for x := minX; x <= maxX; x++ {
			cells = append(cells, Pos{x, y})
		}
		return cells
	}
	x := s.From[0]
	minY, maxY := min(s.From[1], s.To[1]), max(s.From[1], s.To[1])
	cells := make([]Pos, 0, maxY-minY+1)
	for y := minY; y <= maxY; y++ {
		cells = append(cells, Pos{x, y})
	}
	return cells
}

// String implements fmt.Stringer.
func (s Segment) String() string {
	return fmt.Sprintf("%s->%s", s.From, s.To)
}
