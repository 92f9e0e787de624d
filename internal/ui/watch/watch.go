// Package watch replays a simulation on the terminal, one grain at a time.
//
// The simulation runs first (see sim.Config.OnGrain and Recorder), and the recorded events
// are then animated on a tcell screen, starting from the map as it was before the first grain.
package watch

import (
	"context"
	"fmt"
	"github.com/gdamore/tcell/v2"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/janpfeifer/sandfall/internal/sim"
	"github.com/pkg/errors"
	"time"
)

// Symbols drawn on screen.
const (
	RuneRock   = '█'
	RuneSand   = 'o'
	RuneSource = '+'
	RuneFloor  = '▀'
)

// Recorder collects the events of a simulation, to be replayed later.
type Recorder struct {
	Events []sim.Event
}

// Record is meant to be used as sim.Config.OnGrain.
func (r *Recorder) Record(e sim.Event) {
	r.Events = append(r.Events, e)
}

// Viewer draws a cave on a tcell.Screen and animates grains settling on it.
type Viewer struct {
	screen tcell.Screen
	m      *cave.Map
	source cave.Pos

	// floorY is the row of the virtual floor, or 0 if there is no floor.
	floorY int

	// bottomY is the last row of the cave worth showing.
	bottomY int

	delay  time.Duration
	paused bool
	sound  *Sound

	policy    sim.Policy
	lastEvent sim.Event
	settled   int

	rockStyle, sandStyle, lastStyle, sourceStyle, floorStyle, statusStyle tcell.Style
}

// New creates a viewer on screen for the cave m, which is cloned: the caller's map is not changed.
//
// floorY is the row of the virtual floor, or 0 if there is none.
func New(screen tcell.Screen, m *cave.Map, policy sim.Policy, source cave.Pos, floorY int) *Viewer {
	v := &Viewer{
		screen:      screen,
		m:           m.Clone(),
		source:      source,
		floorY:      floorY,
		policy:      policy,
		delay:       20 * time.Millisecond,
		rockStyle:   tcell.StyleDefault.Foreground(tcell.ColorGray),
		sandStyle:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
		lastStyle:   tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
		sourceStyle: tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
		floorStyle:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		statusStyle: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite),
	}
	v.bottomY = floorY
	if floorY <= 0 && !m.IsEmpty() {
		v.bottomY = m.LowestY() + 1
	}
	return v
}

// SetDelay between grains. Zero means as fast as possible.
func (v *Viewer) SetDelay(delay time.Duration) {
	v.delay = max(delay, 0)
}

// SetSound enables a tick per settled grain. Pass nil to disable it.
func (v *Viewer) SetSound(s *Sound) {
	v.sound = s
}

// Settled returns the number of grains settled so far in the replay.
func (v *Viewer) Settled() int {
	return v.settled
}

// Apply one simulation event to the viewer's map.
func (v *Viewer) Apply(e sim.Event) {
	v.lastEvent = e
	if e.Escaped {
		return
	}
	v.m.Insert(e.Rest)
	v.settled++
	if v.sound != nil {
		v.sound.Tick(v.bottomY - e.Rest.Y())
	}
}

// origin returns the cave position drawn at the top-left corner of the screen, below the
// status line.
func (v *Viewer) origin() (x0, y0 int) {
	width, height := v.screen.Size()
	x0 = v.source.X() - width/2
	rows := height - 1
	if v.bottomY < rows || v.lastEvent.Grain == 0 {
		return x0, 0
	}
	// Follow the last grain, without scrolling past the bottom.
	y0 = min(v.lastEvent.Rest.Y()-rows/2, v.bottomY-rows+1)
	return x0, max(y0, 0)
}

// ScreenPos returns the screen coordinates of a cave position, and whether it is visible.
func (v *Viewer) ScreenPos(pos cave.Pos) (col, row int, visible bool) {
	width, height := v.screen.Size()
	x0, y0 := v.origin()
	col, row = pos.X()-x0, pos.Y()-y0+1
	visible = col >= 0 && col < width && row >= 1 && row < height
	return
}

// Draw the visible part of the cave and the status line.
func (v *Viewer) Draw() {
	v.screen.Clear()
	width, height := v.screen.Size()
	x0, y0 := v.origin()
	for row := 1; row < height; row++ {
		y := y0 + row - 1
		for col := 0; col < width; col++ {
			pos := cave.Pos{x0 + col, y}
			switch {
			case v.floorY > 0 && y == v.floorY:
				v.screen.SetContent(col, row, RuneFloor, nil, v.floorStyle)
			case v.m.KindAt(pos) == cave.Rock:
				v.screen.SetContent(col, row, RuneRock, nil, v.rockStyle)
			case v.m.KindAt(pos) == cave.Sand:
				style := v.sandStyle
				if v.lastEvent.Grain > 0 && pos == v.lastEvent.Rest {
					style = v.lastStyle
				}
				v.screen.SetContent(col, row, RuneSand, nil, style)
			case pos == v.source:
				v.screen.SetContent(col, row, RuneSource, nil, v.sourceStyle)
			}
		}
	}
	v.drawStatus(width)
	v.screen.Show()
}

func (v *Viewer) drawStatus(width int) {
	status := fmt.Sprintf(" %s | grain #%d | settled: %d | delay: %s | space: pause, +/-: speed, q: quit",
		v.policy, v.lastEvent.Grain, v.settled, v.delay)
	if v.paused {
		status += " | PAUSED"
	}
	col := 0
	for _, r := range status {
		if col >= width {
			break
		}
		v.screen.SetContent(col, 0, r, nil, v.statusStyle)
		col++
	}
	for ; col < width; col++ {
		v.screen.SetContent(col, 0, ' ', nil, v.statusStyle)
	}
}

// HandleEvent processes a terminal event, and returns false if the viewer should quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			v.paused = !v.paused
		case ev.Key() == tcell.KeyRune && ev.Rune() == '+':
			v.delay /= 2
		case ev.Key() == tcell.KeyRune && ev.Rune() == '-':
			v.delay = max(2*v.delay, time.Millisecond)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// errQuit is used internally to stop the replay when the user quits.
var errQuit = errors.New("quit")

// Replay animates the events, one grain per frame, then keeps the final state on screen
// until the user quits.
func (v *Viewer) Replay(ctx context.Context, events []sim.Event) error {
	eventChan := make(chan tcell.Event, 16)
	quitPolling := make(chan struct{})
	defer close(quitPolling)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quitPolling:
				return
			}
		}
	}()

	// wait for d, and then for as long as the viewer is paused.
	wait := func(d time.Duration) error {
		expired := d <= 0
		var timeout <-chan time.Time
		if !expired {
			timer := time.NewTimer(d)
			defer timer.Stop()
			timeout = timer.C
		}
		for !expired || v.paused {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-eventChan:
				if !v.HandleEvent(ev) {
					return errQuit
				}
				v.Draw()
			case <-timeout:
				expired = true
				timeout = nil
			}
		}
		return nil
	}

	v.Draw()
	for _, e := range events {
		v.Apply(e)
		if v.delay == 0 && !v.paused {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		v.Draw()
		if err := wait(v.delay); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
	v.paused = true
	v.Draw()
	if err := wait(0); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// Run opens the terminal screen, replays the events over the initial map and closes the screen.
func Run(ctx context.Context, initial *cave.Map, policy sim.Policy, source cave.Pos, floorY int,
	events []sim.Event, delay time.Duration, sound *Sound) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "failed to create terminal screen")
	}
	if err = screen.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize terminal screen")
	}
	defer screen.Fini()
	v := New(screen, initial, policy, source, floorY)
	v.SetDelay(delay)
	v.SetSound(sound)
	return v.Replay(ctx, events)
}
