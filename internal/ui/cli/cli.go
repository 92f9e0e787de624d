// Package cli implements the command-line rendering of a cave and of the simulation results.
//
// The cave drawing is only meant for inspection: rows are labeled with y, '#' marks occupied
// cells, '*' the source (if still free), '.' empty cells and '-' the floor row.
package cli

import (
	"bytes"
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/janpfeifer/sandfall/internal/sim"
	"golang.org/x/term"
	"io"
	"os"
	"regexp"
	"strings"
)

// Symbols used to draw the cave.
const (
	SymbolOccupied = '#'
	SymbolSource   = '*'
	SymbolEmpty    = '.'
	SymbolFloor    = '-'
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripColors removes color/control sequences from s.
func StripColors(s string) string {
	return ansiFilter.ReplaceAllString(s, "")
}

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len(StripColors(s))
}

// centerBlock indents every line of block so that the widest line is centered in width.
func centerBlock(block string, width int) string {
	lines := strings.Split(block, "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((width-blockWidth)/2, 0)
	var sb strings.Builder
	for ii, line := range lines {
		if len(line) > 0 {
			sb.WriteString(strings.Repeat(" ", indent))
			sb.WriteString(line)
		}
		if ii < len(lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func printCentered(block string) {
	terminalWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		// Not a terminal.
		terminalWidth = 0
	}
	fmt.Println(centerBlock(block, terminalWidth))
}

// UI renders caves and results to the terminal.
type UI struct {
	color, clearScreen bool

	rockStyle, sandStyle, sourceStyle, floorStyle, emptyStyle lipgloss.Style
}

// New creates a UI. If color is false, the output is plain text.
func New(color bool, clearScreen bool) *UI {
	return &UI{
		color:       color,
		clearScreen: clearScreen,
		rockStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),
		sandStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		sourceStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		floorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		emptyStyle:  lipgloss.NewStyle().Faint(true),
	}
}

// RenderMap writes the cave m to w, from row 0 down to floorY, with one empty column on
// each side of the occupied cells.
func (ui *UI) RenderMap(w io.Writer, m *cave.Map, source cave.Pos, floorY int) error {
	minX, maxX := source.X(), source.X()
	if !m.IsEmpty() {
		var mapMinX, mapMaxX int
		mapMinX, mapMaxX, _, _ = m.Bounds()
		minX, maxX = min(minX, mapMinX), max(maxX, mapMaxX)
	}
	minX--
	maxX++
	var buf bytes.Buffer
	for y := 0; y <= floorY; y++ {
		ui.renderRow(&buf, m, source, y, floorY, minX, maxX)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (ui *UI) renderRow(buf *bytes.Buffer, m *cave.Map, source cave.Pos, y, floorY, minX, maxX int) {
	_, _ = fmt.Fprintf(buf, "%3d: ", y)
	if y == floorY {
		buf.WriteString(ui.style(ui.floorStyle, strings.Repeat(string(SymbolFloor), maxX-minX+1)))
		buf.WriteByte('\n')
		return
	}
	for x := minX; x <= maxX; x++ {
		pos := cave.Pos{x, y}
		switch kind := m.KindAt(pos); {
		case kind == cave.Rock:
			buf.WriteString(ui.style(ui.rockStyle, string(SymbolOccupied)))
		case kind == cave.Sand:
			buf.WriteString(ui.style(ui.sandStyle, string(SymbolOccupied)))
		case pos == source:
			buf.WriteString(ui.style(ui.sourceStyle, string(SymbolSource)))
		default:
			buf.WriteString(ui.style(ui.emptyStyle, string(SymbolEmpty)))
		}
	}
	buf.WriteByte('\n')
}

func (ui *UI) style(s lipgloss.Style, text string) string {
	if !ui.color {
		return text
	}
	return s.Render(text)
}

// PrintMap renders the cave centered on the terminal.
func (ui *UI) PrintMap(m *cave.Map, source cave.Pos, floorY int) {
	if ui.clearScreen {
		fmt.Print("\033c")
	}
	var buf bytes.Buffer
	_ = ui.RenderMap(&buf, m, source, floorY)
	printCentered(buf.String())
}

// FormatResult returns a one line description of the result of a simulation.
func FormatResult(r sim.Result) string {
	switch r.Policy {
	case sim.PolicyAbyss:
		return fmt.Sprintf("abyss: %d grains settled before sand started flowing into the abyss (lowest rock y=%d)",
			r.Grains, r.LowestY)
	case sim.PolicyFloor:
		return fmt.Sprintf("floor: %d grains settled until the source got blocked (floor y=%d)",
			r.Grains, r.FloorY)
	default:
		return fmt.Sprintf("%s: %d grains", r.Policy, r.Grains)
	}
}

// PrintResults prints the results in a highlighted box.
func (ui *UI) PrintResults(results ...sim.Result) {
	lines := make([]string, len(results))
	for ii, r := range results {
		lines[ii] = FormatResult(r)
	}
	text := strings.Join(lines, "\n")
	if !ui.color {
		fmt.Println(text)
		return
	}
	fmt.Println()
	printCentered(
		lipgloss.NewStyle().
			Background(lipgloss.Color("3")).
			Foreground(lipgloss.Color("0")).
			Padding(1, 2).
			Render(text))
	fmt.Println()
}
