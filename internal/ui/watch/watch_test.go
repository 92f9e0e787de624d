package watch

import (
	"context"
	"github.com/gdamore/tcell/v2"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/janpfeifer/sandfall/internal/cave/cavetest"
	"github.com/janpfeifer/sandfall/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func newTestScreen(t *testing.T) tcell.Screen {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 15)
	t.Cleanup(screen.Fini)
	return screen
}

func runeAt(t *testing.T, v *Viewer, screen tcell.Screen, pos cave.Pos) rune {
	col, row, visible := v.ScreenPos(pos)
	require.Truef(t, visible, "position %s not visible", pos)
	mainc, _, _, _ := screen.GetContent(col, row)
	return mainc
}

func TestViewerDraw(t *testing.T) {
	screen := newTestScreen(t)
	m := cavetest.ReferenceMap()
	v := New(screen, m, sim.PolicyFloor, cave.DefaultSource, m.LowestY()+2)
	v.Draw()

	col, row, visible := v.ScreenPos(cave.DefaultSource)
	assert.True(t, visible)
	assert.Equal(t, 20, col)
	assert.Equal(t, 1, row)
	assert.Equal(t, RuneSource, runeAt(t, v, screen, cave.DefaultSource))
	assert.Equal(t, RuneRock, runeAt(t, v, screen, cave.Pos{498, 4}))
	assert.Equal(t, RuneFloor, runeAt(t, v, screen, cave.Pos{490, 11}))

	// Status line.
	mainc, _, _, _ := screen.GetContent(1, 0)
	assert.Equal(t, 'f', mainc)

	// Applying events draws sand, but escaped grains are not drawn.
	v.Apply(sim.Event{Grain: 1, Start: cave.DefaultSource, Rest: cave.Pos{500, 8}})
	v.Apply(sim.Event{Grain: 2, Start: cave.DefaultSource, Rest: cave.Pos{493, 9}, Escaped: true})
	v.Draw()
	assert.Equal(t, RuneSand, runeAt(t, v, screen, cave.Pos{500, 8}))
	assert.NotEqual(t, RuneSand, runeAt(t, v, screen, cave.Pos{493, 9}))
	assert.Equal(t, 1, v.Settled())

	// The original map is not touched.
	assert.False(t, m.Has(cave.Pos{500, 8}))
}

func TestReplay(t *testing.T) {
	screen := newTestScreen(t)
	initial := cavetest.ReferenceMap()

	var recorder Recorder
	cfg := sim.DefaultConfig()
	cfg.OnGrain = recorder.Record
	final := initial.Clone()
	result, err := sim.Run(context.Background(), final, sim.PolicyAbyss, cfg)
	require.NoError(t, err)
	require.Len(t, recorder.Events, result.Dropped)

	v := New(screen, initial, sim.PolicyAbyss, cfg.Source, 0)
	v.SetDelay(0)
	// Quit once the replay is over.
	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	done := make(chan error, 1)
	go func() { done <- v.Replay(context.Background(), recorder.Events) }()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("replay didn't finish")
	}
	assert.Equal(t, result.Grains, v.Settled())
	assert.True(t, v.m.Equal(final))
}

func TestReplayCancelled(t *testing.T) {
	screen := newTestScreen(t)
	m := cavetest.ReferenceMap()
	v := New(screen, m, sim.PolicyAbyss, cave.DefaultSource, 0)
	v.SetDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := v.Replay(ctx, []sim.Event{{Grain: 1, Start: cave.DefaultSource, Rest: cave.Pos{500, 8}}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestHandleEvent(t *testing.T) {
	screen := newTestScreen(t)
	v := New(screen, cavetest.ReferenceMap(), sim.PolicyFloor, cave.DefaultSource, 11)
	v.SetDelay(8 * time.Millisecond)
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone)))
	assert.Equal(t, 4*time.Millisecond, v.delay)
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '-', tcell.ModNone)))
	assert.Equal(t, 8*time.Millisecond, v.delay)
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)))
	assert.True(t, v.paused)
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
}

func TestSilentSound(t *testing.T) {
	var s Sound
	// Not initialized: no-ops.
	s.Tick(3)
	s.Close()
	assert.Less(t, TickFrequency(0), TickFrequency(10))
	assert.Equal(t, TickFrequency(0), TickFrequency(-5))
}
