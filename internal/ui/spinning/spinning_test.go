package spinning

import (
	"bytes"
	"context"
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

func TestSpinning(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithWriter(context.Background(), &buf, "grains")
	for range 24 {
		s.Add(1)
	}
	assert.Equal(t, int64(24), s.Count())
	s.Done()
	s.Done() // Calling it twice is fine.
	assert.True(t, strings.HasSuffix(buf.String(), "\rgrains: 24\033[0K\n"), "got %q", buf.String())
}

func TestSpinningCancelled(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	s := NewWithWriter(ctx, &buf, "grains")
	s.Add(3)
	cancel()
	s.Done()
	assert.Contains(t, buf.String(), "grains: ")
}
