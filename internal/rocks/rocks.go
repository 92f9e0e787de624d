// Package rocks parses the textual description of the rock in a cave.
//
// Each non-empty line describes one polyline: vertices as "x,y" joined by "->", e.g.:
//
//	498,4 -> 498,6 -> 496,6
//
// Coordinates are non-negative integers, and consecutive vertices must share either x or y.
package rocks

import (
	"bufio"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"io"
	"k8s.io/klog/v2"
	"runtime"
	"strconv"
	"strings"
)

// Separator between vertices of a polyline.
const Separator = "->"

// Parse reads the rock description and returns one polyline per non-empty line, in input order.
//
// Lines are parsed in parallel, since they are independent.
// Errors report the 1-based line number of the first offending line.
func Parse(r io.Reader) ([]cave.Polyline, error) {
	var (
		lines   []string
		lineNum []int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		lineNum = append(lineNum, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read rock description")
	}

	polylines := make([]cave.Polyline, len(lines))
	lineErrs := make([]error, len(lines))
	var wg errgroup.Group
	wg.SetLimit(runtime.GOMAXPROCS(0))
	for ii, line := range lines {
		wg.Go(func() error {
			polylines[ii], lineErrs[ii] = ParseLine(line)
			return nil
		})
	}
	_ = wg.Wait()

	// Report the first error in input order, independent of scheduling.
	for ii, err := range lineErrs {
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", lineNum[ii])
		}
	}
	klog.V(1).Infof("rocks: parsed %d polylines", len(polylines))
	return polylines, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(description string) ([]cave.Polyline, error) {
	return Parse(strings.NewReader(description))
}

// ParseLine parses one polyline, e.g. "503,4 -> 502,4 -> 502,9".
func ParseLine(line string) (cave.Polyline, error) {
	parts := strings.Split(line, Separator)
	polyline := make(cave.Polyline, 0, len(parts))
	for _, part := range parts {
		pos, err := ParsePos(part)
		if err != nil {
			return nil, err
		}
		polyline = append(polyline, pos)
	}
	for _, segment := range polyline.Segments() {
		if !segment.IsAxisAligned() {
			return nil, errors.Errorf("rock segment %s is neither horizontal nor vertical", segment)
		}
	}
	return polyline, nil
}

// ParsePos parses a "x,y" vertex.
func ParsePos(text string) (cave.Pos, error) {
	text = strings.TrimSpace(text)
	xText, yText, found := strings.Cut(text, ",")
	if !found {
		return cave.Pos{}, errors.Errorf("invalid vertex %q: expected \"x,y\"", text)
	}
	var pos cave.Pos
	for ii, coordText := range []string{xText, yText} {
		coordText = strings.TrimSpace(coordText)
		coord, err := strconv.Atoi(coordText)
		if err != nil {
			return cave.Pos{}, errors.Wrapf(err, "invalid coordinate %q in vertex %q", coordText, text)
		}
		if coord < 0 {
			return cave.Pos{}, errors.Errorf("negative coordinate %d in vertex %q", coord, text)
		}
		pos[ii] = coord
	}
	return pos, nil
}

// Format writes the polylines back in the textual notation, one per line.
func Format(w io.Writer, polylines []cave.Polyline) error {
	for _, p := range polylines {
		if _, err := io.WriteString(w, p.String()+"\n"); err != nil {
			return errors.Wrap(err, "failed to write rock description")
		}
	}
	return nil
}
