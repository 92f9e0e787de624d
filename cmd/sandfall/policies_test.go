package main

import (
	"bytes"
	"context"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/janpfeifer/sandfall/internal/cave/cavetest"
	"github.com/janpfeifer/sandfall/internal/sim"
	"github.com/janpfeifer/sandfall/internal/ui/spinning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestParsePolicies(t *testing.T) {
	policies, err := parsePolicies("both")
	require.NoError(t, err)
	assert.Equal(t, []sim.Policy{sim.PolicyAbyss, sim.PolicyFloor}, policies)

	policies, err = parsePolicies("Floor")
	require.NoError(t, err)
	assert.Equal(t, []sim.Policy{sim.PolicyFloor}, policies)

	policies, err = parsePolicies("floor, abyss")
	require.NoError(t, err)
	assert.Equal(t, []sim.Policy{sim.PolicyFloor, sim.PolicyAbyss}, policies)

	_, err = parsePolicies("lava")
	require.ErrorIs(t, err, sim.ErrUnknownPolicy)
}

func TestRunPolicies(t *testing.T) {
	initial := cavetest.ReferenceMap()
	var out bytes.Buffer
	progress := spinning.NewWithWriter(context.Background(), &out, "grains")
	results, finals, err := runPolicies(context.Background(), initial, sim.Policies, sim.DefaultConfig(), progress)
	progress.Done()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, cavetest.ReferenceAbyssCount, results[0].Grains)
	assert.Equal(t, cavetest.ReferenceFloorCount, results[1].Grains)
	assert.Equal(t, cavetest.ReferenceAbyssCount, finals[0].NumSand())
	assert.Equal(t, cavetest.ReferenceFloorCount, finals[1].NumSand())
	assert.Equal(t, int64(results[0].Dropped+results[1].Dropped), progress.Count())

	// The initial map is left untouched.
	assert.True(t, initial.Equal(cavetest.ReferenceMap()))
	assert.Equal(t, 11, renderFloorY(results[0]))
	assert.Equal(t, 11, renderFloorY(results[1]))
}

func TestRunPoliciesError(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.MaxGrains = 30
	_, _, err := runPolicies(context.Background(), cavetest.ReferenceMap(), sim.Policies, cfg, nil)
	require.ErrorIs(t, err, sim.ErrDidNotConverge)
}

func TestReadRock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cave.txt")
	require.NoError(t, os.WriteFile(path, []byte(cavetest.ReferenceText), 0o644))
	polylines, err := readRock(path)
	require.NoError(t, err)
	assert.True(t, cave.BuildMap(polylines).Equal(cavetest.ReferenceMap()))

	_, err = readRock(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
