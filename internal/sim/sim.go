// Package sim drops grains of sand, one at a time, into a cave.Map until the cave can't take
// any more, and counts them.
//
// Each grain falls with the rest rule (see Step) and the map grows with every settled grain,
// so grains are strictly sequential. Two termination policies are supported:
//
//   - PolicyAbyss: there is nothing below the lowest rock, grains that fall past it are lost.
//     The simulation stops when grains start falling into the abyss.
//   - PolicyFloor: there is an infinite solid floor two rows below the lowest rock. The
//     simulation stops when the sand piles up to the source and blocks it.
//
// The caller owns the map: it is mutated in place, so pass a clone if it is needed afterwards.
package sim

import (
	"context"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Policy defines when the simulation stops.
type Policy uint8

const (
	PolicyAbyss Policy = iota
	PolicyFloor

	// PolicyInvalid represents an invalid Policy.
	PolicyInvalid
)

var policyNames = [...]string{"abyss", "floor", "invalid"}

// Policies enumerates the valid policies.
var Policies = []Policy{PolicyAbyss, PolicyFloor}

// String returns the policy name, as accepted by ParsePolicy.
func (p Policy) String() string {
	if p >= PolicyInvalid {
		return policyNames[PolicyInvalid]
	}
	return policyNames[p]
}

// ParsePolicy converts a name ("abyss" or "floor") to a Policy.
func ParsePolicy(name string) (Policy, error) {
	for _, p := range Policies {
		if p.String() == name {
			return p, nil
		}
	}
	return PolicyInvalid, errors.Wrapf(ErrUnknownPolicy, "policy %q (valid values: abyss, floor)", name)
}

var (
	// ErrEmptyCave is returned when there is no rock: the lowest row is undefined and grains would
	// fall forever.
	ErrEmptyCave = errors.New("cave has no rock")

	// ErrDidNotConverge is returned when Config.MaxGrains grains were dropped without reaching
	// the termination condition.
	ErrDidNotConverge = errors.New("simulation did not converge")

	// ErrUnknownPolicy is returned for an invalid Policy.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// Event describes one grain dropped during a simulation. See Config.OnGrain.
type Event struct {
	// Grain is the 1-based number of the grain in the simulation.
	Grain int

	// Start is where the grain started falling: the source, or a cell of the previous grain's
	// path for PolicyFloor.
	Start cave.Pos

	// Rest is where the grain stopped. If Escaped, it is where it crossed the lowest rock row.
	Rest cave.Pos

	// Escaped is true if the grain fell into the abyss, and was not added to the map.
	Escaped bool

	// Occupied is the number of occupied cells in the map after the grain.
	Occupied int
}

// Result of a simulation.
type Result struct {
	Policy Policy

	// Grains is the number of grains that settled before the simulation stopped.
	// For PolicyFloor it includes the grain that blocked the source, and it is 1 if the
	// source was blocked from the start.
	Grains int

	// Dropped is the total number of grains dropped, including escaped ones.
	Dropped int

	// Moves is the total number of single cell moves of all grains.
	Moves int64

	// LowestY is the lowest rock row at the start of the simulation.
	LowestY int

	// FloorY is the row of the virtual floor, only set for PolicyFloor.
	FloorY int
}

// progressEvery is the number of grains between progress log lines.
const progressEvery = 1000

// Run simulates grains falling into m until the policy termination condition is reached.
//
// It mutates m, inserting every settled grain. The context is checked before each grain is
// dropped: a grain's fall is never interrupted half-way.
//
// A panic during the simulation (e.g. from Config.OnGrain) is returned as an error.
func Run(ctx context.Context, m *cave.Map, policy Policy, cfg Config) (result Result, err error) {
	if m.IsEmpty() {
		return Result{Policy: policy}, ErrEmptyCave
	}
	if err = cfg.Validate(); err != nil {
		return Result{Policy: policy}, err
	}
	var runErr error
	err = exceptions.TryCatch[error](func() {
		switch policy {
		case PolicyAbyss:
			result, runErr = runAbyss(ctx, m, cfg)
		case PolicyFloor:
			result, runErr = runFloor(ctx, m, cfg)
		default:
			runErr = errors.Wrapf(ErrUnknownPolicy, "policy #%d", policy)
		}
	})
	if err != nil {
		return result, errors.WithMessagef(err, "panic while simulating policy %s", policy)
	}
	if runErr != nil {
		return result, errors.WithMessagef(runErr, "simulating policy %s", policy)
	}
	return result, nil
}

// Abyss runs the simulation with PolicyAbyss and returns the number of settled grains.
func Abyss(ctx context.Context, m *cave.Map, cfg Config) (int, error) {
	result, err := Run(ctx, m, PolicyAbyss, cfg)
	return result.Grains, err
}

// Floor runs the simulation with PolicyFloor and returns the number of settled grains, including
// the one that blocks the source.
func Floor(ctx context.Context, m *cave.Map, cfg Config) (int, error) {
	result, err := Run(ctx, m, PolicyFloor, cfg)
	return result.Grains, err
}

// checkBeforeDrop returns an error if the simulation must stop before dropping one more grain.
func checkBeforeDrop(ctx context.Context, cfg Config, dropped int) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "interrupted after %d grains", dropped)
	}
	if cfg.MaxGrains > 0 && dropped >= cfg.MaxGrains {
		return errors.Wrapf(ErrDidNotConverge, "gave up after %d grains", dropped)
	}
	return nil
}

func logProgress(policy Policy, dropped int, m *cave.Map) {
	if dropped%progressEvery == 0 && klog.V(1).Enabled() {
		klog.Infof("sim[%s]: %d grains dropped, %d cells occupied", policy, dropped, m.Len())
	}
}

// runAbyss drops grains from the source until two consecutive grains fall past the lowest rock.
//
// Escaped grains don't change the map, so after one escapes the next one follows the same path.
// Waiting for the second one is kept as the stop condition, and the grain count excludes both.
func runAbyss(ctx context.Context, m *cave.Map, cfg Config) (result Result, err error) {
	result.Policy = PolicyAbyss
	result.LowestY = m.LowestY()
	klog.V(1).Infof("sim[abyss]: source=%s, lowest rock row y=%d", cfg.Source, result.LowestY)
	if m.Has(cfg.Source) {
		klog.V(1).Infof("sim[abyss]: source %s is already blocked", cfg.Source)
		return
	}

	prevEscaped := false
	for count := 0; ; count++ {
		if err = checkBeforeDrop(ctx, cfg, count); err != nil {
			return
		}
		grain, moves := Fall(m, cfg.Source, result.LowestY, nil)
		result.Moves += int64(moves)
		result.Dropped = count + 1
		escaped := grain.Y() >= result.LowestY
		if escaped && prevEscaped {
			result.Grains = count - 1
			cfg.notify(Event{Grain: count + 1, Start: cfg.Source, Rest: grain, Escaped: true, Occupied: m.Len()})
			return
		}
		prevEscaped = escaped
		if !escaped {
			m.Insert(grain)
			klog.V(2).Infof("sim[abyss]: grain #%d at rest at %s", count+1, grain)
		}
		cfg.notify(Event{Grain: count + 1, Start: cfg.Source, Rest: grain, Escaped: escaped, Occupied: m.Len()})
		if !escaped && grain == cfg.Source {
			// The source got blocked before any grain escaped.
			result.Grains = count + 1
			return
		}
		logProgress(PolicyAbyss, count+1, m)
	}
}

// runFloor drops grains until one comes to rest at the source.
//
// Grains above the floor row always rest at FloorY-1. Unless Config.RestartAtSource is set,
// each grain starts at the top of the path stack instead of at the source: the stack holds the
// path of the previous grains from the source down, minus the cell where the last one settled.
func runFloor(ctx context.Context, m *cave.Map, cfg Config) (result Result, err error) {
	result.Policy = PolicyFloor
	result.LowestY = m.LowestY()
	result.FloorY = result.LowestY + 2
	klog.V(1).Infof("sim[floor]: source=%s, lowest rock row y=%d, floor y=%d",
		cfg.Source, result.LowestY, result.FloorY)
	if cfg.Source.Y() >= result.FloorY {
		err = errors.Errorf("source %s is at or below the floor row y=%d", cfg.Source, result.FloorY)
		return
	}
	if m.Has(cfg.Source) {
		// The first grain can't leave the source: it counts, but the map doesn't change.
		klog.V(1).Infof("sim[floor]: source %s is already blocked", cfg.Source)
		result.Grains, result.Dropped = 1, 1
		cfg.notify(Event{Grain: 1, Start: cfg.Source, Rest: cfg.Source, Occupied: m.Len()})
		return
	}

	path := newPathStack(cfg.Source)
	var pushPath func(cave.Pos)
	if !cfg.RestartAtSource {
		pushPath = path.Push
	}
	restY := result.FloorY - 1
	for count := 1; ; count++ {
		if err = checkBeforeDrop(ctx, cfg, count-1); err != nil {
			return
		}
		start := cfg.Source
		if !cfg.RestartAtSource {
			start = path.Top()
		}
		grain, moves := Fall(m, start, restY, pushPath)
		result.Moves += int64(moves)
		m.Insert(grain)
		result.Dropped = count
		result.Grains = count
		klog.V(2).Infof("sim[floor]: grain #%d at rest at %s", count, grain)
		cfg.notify(Event{Grain: count, Start: start, Rest: grain, Occupied: m.Len()})
		if grain == cfg.Source {
			return
		}
		if !cfg.RestartAtSource {
			path.Pop()
		}
		logProgress(PolicyFloor, count, m)
	}
}
