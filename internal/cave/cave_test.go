package cave_test

import (
	. "github.com/janpfeifer/sandfall/internal/cave"
	. "github.com/janpfeifer/sandfall/internal/cave/cavetest"
	"github.com/janpfeifer/sandfall/internal/generics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestSegmentCells(t *testing.T) {
	// Horizontal, in both directions.
	want := []Pos{{496, 6}, {497, 6}, {498, 6}}
	assert.Equal(t, want, Segment{Pos{498, 6}, Pos{496, 6}}.Cells())
	assert.Equal(t, want, Segment{Pos{496, 6}, Pos{498, 6}}.Cells())

	// Vertical, in both directions.
	want = []Pos{{502, 4}, {502, 5}, {502, 6}}
	assert.Equal(t, want, Segment{Pos{502, 4}, Pos{502, 6}}.Cells())
	assert.Equal(t, want, Segment{Pos{502, 6}, Pos{502, 4}}.Cells())

	// Single cell.
	assert.Equal(t, []Pos{{7, 7}}, Segment{Pos{7, 7}, Pos{7, 7}}.Cells())

	// Diagonal.
	assert.False(t, Segment{Pos{0, 0}, Pos{1, 1}}.IsAxisAligned())
	assert.Nil(t, Segment{Pos{0, 0}, Pos{1, 1}}.Cells())
}

func TestBuildMap(t *testing.T) {
	m := ReferenceMap()
	// First polyline: 3 + 3 cells sharing one vertex; second: 2 + 6 + 9 sharing two vertices.
	assert.Equal(t, 5+15, m.Len())
	assert.Equal(t, 20, m.NumRock())
	assert.Equal(t, 0, m.NumSand())
	for _, pos := range []Pos{{498, 4}, {498, 5}, {498, 6}, {497, 6}, {496, 6}, {503, 4}, {502, 9}, {494, 9}} {
		assert.Truef(t, m.Has(pos), "expected rock at %s", pos)
		assert.Equal(t, Rock, m.KindAt(pos))
	}
	for _, pos := range []Pos{{500, 0}, {499, 4}, {497, 5}, {493, 9}, {503, 5}} {
		assert.Falsef(t, m.Has(pos), "expected no rock at %s", pos)
		assert.Equal(t, Empty, m.KindAt(pos))
	}
	assert.Equal(t, 9, m.LowestY())

	minX, maxX, minY, maxY := m.Bounds()
	assert.Equal(t, []int{494, 503, 4, 9}, []int{minX, maxX, minY, maxY})
}

func TestBuildMapDiagonalPanics(t *testing.T) {
	require.Panics(t, func() {
		BuildMap([]Polyline{{{0, 0}, {0, 3}, {2, 5}}})
	})
}

func TestLowestYEmptyPanics(t *testing.T) {
	m := NewMap()
	assert.True(t, m.IsEmpty())
	require.Panics(t, func() { _ = m.LowestY() })
	require.Panics(t, func() { _, _, _, _ = m.Bounds() })
}

func TestInsertAndClone(t *testing.T) {
	m := ReferenceMap()
	c := m.Clone()
	c.Insert(Pos{500, 8})
	assert.Equal(t, Sand, c.KindAt(Pos{500, 8}))
	assert.Equal(t, 1, c.NumSand())
	assert.Equal(t, Empty, m.KindAt(Pos{500, 8}))
	assert.False(t, m.Equal(c))

	// Inserting an already occupied cell doesn't grow the map.
	before := c.Len()
	c.Insert(Pos{502, 9})
	c.Insert(Pos{500, 8})
	assert.Equal(t, before, c.Len())
	assert.Equal(t, Rock, c.KindAt(Pos{502, 9}))

	// Adding rock to a clone leaves the original's rock untouched.
	numRock := m.NumRock()
	c.AddRock(Polyline{{480, 12}, {482, 12}})
	assert.Equal(t, numRock+3, c.NumRock())
	assert.Equal(t, numRock, m.NumRock())
	assert.Equal(t, 0, m.NumSand())
	assert.Equal(t, Empty, m.KindAt(Pos{481, 12}))
}

func TestPositionsSorted(t *testing.T) {
	m := MapFromLayout(Pos{10, 3},
		"#.#",
		".#.",
	)
	assert.Equal(t, []Pos{{10, 3}, {12, 3}, {11, 4}}, m.Positions())
	assert.Equal(t, generics.SetWith(m.Positions()...), generics.SetWith(Pos{11, 4}, Pos{12, 3}, Pos{10, 3}))
}

func TestPolyline(t *testing.T) {
	p := Polyline{{498, 4}, {498, 6}, {496, 6}}
	assert.Equal(t, "498,4 -> 498,6 -> 496,6", p.String())
	assert.Equal(t, []Segment{{Pos{498, 4}, Pos{498, 6}}, {Pos{498, 6}, Pos{496, 6}}}, p.Segments())
	assert.Len(t, Polyline{{1, 1}}.Segments(), 1)
}
