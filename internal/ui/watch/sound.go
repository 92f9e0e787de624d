package watch

import (
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
	"sync"
	"time"
)

const (
	sampleRate   = beep.SampleRate(44100)
	tickDuration = 15 * time.Millisecond
)

// Sound plays a short tick for each settled grain. The pitch rises as the pile grows higher.
//
// The zero value is silent: Init must succeed before Tick makes any sound.
type Sound struct {
	mu          sync.Mutex
	initialized bool
}

// Init opens the audio device. Failing is not fatal, the viewer can run without sound.
func (s *Sound) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return errors.Wrap(err, "failed to initialize audio")
	}
	s.initialized = true
	return nil
}

// TickFrequency returns the frequency (Hz) of the tick for a grain settled at height rows above
// the bottom of the cave.
func TickFrequency(height int) float64 {
	return 220 + 20*float64(max(height, 0))
}

// Tick plays a short tone for a grain settled at height rows above the bottom of the cave.
func (s *Sound) Tick(height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	sine, err := generators.SineTone(sampleRate, TickFrequency(height))
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(tickDuration), sine))
}

// Close stops any sound and releases the audio device.
func (s *Sound) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
}
