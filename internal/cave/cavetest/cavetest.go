// Package cavetest provides helper functions to create tests using cave maps.
package cavetest

import (
	. "github.com/janpfeifer/sandfall/internal/cave"
)

// ReferenceText is the small example cave, in the textual rock notation.
const ReferenceText = `498,4 -> 498,6 -> 496,6
503,4 -> 502,4 -> 502,9 -> 494,9
`

// Counts expected for the reference cave with the sand entering at DefaultSource.
const (
	ReferenceAbyssCount = 24
	ReferenceFloorCount = 93
)

// ReferencePolylines returns the polylines of ReferenceText.
func ReferencePolylines() []Polyline {
	return []Polyline{
		{{498, 4}, {498, 6}, {496, 6}},
		{{503, 4}, {502, 4}, {502, 9}, {494, 9}},
	}
}

// ReferenceMap returns a freshly built map of the reference cave.
func ReferenceMap() *Map {
	return BuildMap(ReferencePolylines())
}

// MapFromLayout builds a map from a drawing: each '#' in layout is a rock cell, anything
// else is empty. The first character of the first row is at origin.
func MapFromLayout(origin Pos, layout ...string) *Map {
	m := NewMap()
	for dy, row := range layout {
		for dx, c := range row {
			if c != '#' {
				continue
			}
			pos := Pos{origin.X() + dx, origin.Y() + dy}
			m.AddRock(Polyline{pos})
		}
	}
	return m
}
