// Package spinning provides a spinning symbol with a counter, to use while a long simulation
// runs, and the handling of Ctrl+C.
package spinning

import (
	"context"
	"fmt"
	"io"
	"k8s.io/klog/v2"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

var (
	ThemeAscii = []rune("|/-\\")
	ThemeSand  = []rune("⠁⠂⠄⡀⢀⠠⠐⠈")

	// Theme defaults to ThemeSand, but it can be set to anything else.
	Theme = ThemeSand

	// Interval between updates of the display.
	Interval = 250 * time.Millisecond
)

// SafeInterrupt will capture SigInt (Ctrl+C) and SigTerm and call the provided onInterrupt.
// If the program haven't exited after gracePeriod, it will call Reset to reset the terminal
// and exit.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), stopping after the current grain... (%s)", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}
		time.Sleep(gracePeriod)
		Reset()
		klog.Fatalf("Graceful shutting down %s period expired, exiting.", gracePeriod)
	}()
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset() {
	fmt.Print("\033[?25h\033[39;49;0m\n")
}

// Spinning displays a spinning symbol followed by a label and a counter, until Done is called.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()
	out    io.Writer
	label  string
	count  atomic.Int64
}

// New starts a spinning display on stdout that runs on a separate goroutine.
// It stops when Spinning.Done is called or ctx is cancelled.
func New(ctx context.Context, label string) *Spinning {
	return NewWithWriter(ctx, os.Stdout, label)
}

// NewWithWriter is like New, but writes to out.
func NewWithWriter(ctx context.Context, out io.Writer, label string) *Spinning {
	s := &Spinning{out: out, label: label}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(Interval)
		defer ticker.Stop()
		theme := Theme
		for idx := 0; ; idx = (idx + 1) % len(theme) {
			_, _ = fmt.Fprintf(s.out, "\r%c %s: %d\033[0K", theme[idx], s.label, s.count.Load())
			select {
			case <-ctx.Done():
				_, _ = fmt.Fprintf(s.out, "\r%s: %d\033[0K\n", s.label, s.count.Load())
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// Add n to the counter displayed. It is safe to call from any goroutine.
func (s *Spinning) Add(n int) {
	s.count.Add(int64(n))
}

// Count returns the current value of the counter.
func (s *Spinning) Count() int64 {
	return s.count.Load()
}

// Done stops the display, after printing the final count.
func (s *Spinning) Done() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
