// Package cave holds the sparse obstacle map of a cave: rock built from polylines plus the
// sand that settled on it.
//
// The map is keyed by position in a generics.Set, so there is no fixed bounding box: only
// occupied cells are stored. Cells are never removed, the map only grows.
package cave

import (
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/sandfall/internal/generics"
	"k8s.io/klog/v2"
)

// DefaultSource is where sand enters the cave, unless configured otherwise.
var DefaultSource = Pos{500, 0}

// CellKind of a position in the map.
type CellKind uint8

const (
	Empty CellKind = iota
	Rock
	Sand
)

var cellKindNames = [...]string{"Empty", "Rock", "Sand"}

// String returns the name of the cell kind.
func (k CellKind) String() string {
	if int(k) >= len(cellKindNames) {
		return "Invalid"
	}
	return cellKindNames[k]
}

// Map is the obstacle map: every cell occupied by rock or settled sand.
//
// It is not safe for concurrent use: clone it to run independent simulations in parallel.
type Map struct {
	occupied generics.Set[Pos]

	// rock is the subset of occupied that came from the rock description. It's only
	// used to tell rock from sand.
	rock generics.Set[Pos]
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{
		occupied: generics.MakeSet[Pos](),
		rock:     generics.MakeSet[Pos](),
	}
}

// BuildMap creates the map with the rock of all the polylines.
//
// Every polyline segment must be horizontal or vertical, it panics otherwise: input is
// expected to be validated upstream (see package rocks).
func BuildMap(polylines []Polyline) *Map {
	m := NewMap()
	for _, p := range polylines {
		m.AddRock(p)
	}
	if klog.V(1).Enabled() {
		klog.Infof("cave: built map with %d rock cells from %d polylines", m.Len(), len(polylines))
	}
	return m
}

// AddRock expands every segment of the polyline into cells and inserts them as rock.
// Shared vertices are only stored once.
//
// It panics if a segment is not axis-aligned.
func (m *Map) AddRock(p Polyline) {
	for _, segment := range p.Segments() {
		if !segment.IsAxisAligned() {
			exceptions.Panicf("cave: rock segment %s is neither horizontal nor vertical", segment)
		}
		for _, pos := range segment.Cells() {
			m.occupied.Insert(pos)
			m.rock.Insert(pos)
		}
	}
}

// Has returns whether the position is occupied, by rock or sand.
func (m *Map) Has(pos Pos) bool {
	return m.occupied.Has(pos)
}

// Insert marks pos as occupied by sand. Inserting an occupied position is a no-op.
func (m *Map) Insert(pos Pos) {
	m.occupied.Insert(pos)
}

// KindAt returns what occupies the position.
func (m *Map) KindAt(pos Pos) CellKind {
	switch {
	case !m.occupied.Has(pos):
		return Empty
	case m.rock.Has(pos):
		return Rock
	default:
		return Sand
	}
}

// Len returns the number of occupied cells.
func (m *Map) Len() int {
	return m.occupied.Len()
}

// NumRock returns the number of cells occupied by rock.
func (m *Map) NumRock() int {
	return m.rock.Len()
}

// NumSand returns the number of cells occupied by settled sand.
func (m *Map) NumSand() int {
	return m.occupied.Len() - m.rock.Len()
}

// IsEmpty returns whether nothing occupies the map.
func (m *Map) IsEmpty() bool {
	return m.occupied.Len() == 0
}

// LowestY returns the largest y (the lowest row, since y grows downwards) of any occupied cell.
//
// It panics on an empty map: callers must check IsEmpty first.
func (m *Map) LowestY() int {
	if m.IsEmpty() {
		exceptions.Panicf("cave: LowestY() called on an empty map")
	}
	lowest := 0
	first := true
	for pos := range m.occupied {
		if first || pos[1] > lowest {
			lowest = pos[1]
			first = false
		}
	}
	return lowest
}

// Bounds returns the limits of the occupied cells, inclusive.
//
// It panics on an empty map.
func (m *Map) Bounds() (minX, maxX, minY, maxY int) {
	if m.IsEmpty() {
		exceptions.Panicf("cave: Bounds() called on an empty map")
	}
	first := true
	for pos := range m.occupied {
		if first {
			minX, maxX, minY, maxY = pos[0], pos[0], pos[1], pos[1]
			first = false
			continue
		}
		minX, maxX = min(minX, pos[0]), max(maxX, pos[0])
		minY, maxY = min(minY, pos[1]), max(maxY, pos[1])
	}
	return
}

// Positions returns all occupied positions sorted by y and then x.
func (m *Map) Positions() []Pos {
	return generics.SortedFunc(m.occupied, ComparePos)
}

// Clone returns an independent copy of the map, that can be mutated without affecting m.
func (m *Map) Clone() *Map {
	return &Map{
		occupied: m.occupied.Clone(),
		rock:     m.rock.Clone(),
	}
}

// Equal returns whether both maps have exactly the same occupied cells.
func (m *Map) Equal(m2 *Map) bool {
	return m.occupied.Equal(m2.occupied)
}
