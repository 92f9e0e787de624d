package sim

import (
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/janpfeifer/sandfall/internal/generics"
	"github.com/janpfeifer/sandfall/internal/parameters"
	"github.com/pkg/errors"
	"slices"
	"strings"
)

// DefaultMaxGrains is the default ceiling on the number of grains dropped in one simulation.
// The termination conditions rely on the shape of the cave, and a pathological cave could
// otherwise make the simulation run forever.
const DefaultMaxGrains = 10_000_000

// Config of a simulation.
type Config struct {
	// Source is where each grain enters the cave.
	Source cave.Pos

	// MaxGrains is the maximum number of grains dropped before giving up with ErrDidNotConverge.
	// If <= 0 there is no limit.
	MaxGrains int

	// RestartAtSource makes every grain start at the source with PolicyFloor, instead of reusing
	// the previous grain's path. Results are the same, it's only slower.
	RestartAtSource bool

	// OnGrain, if set, is called after each grain is dropped, and before the next one.
	OnGrain func(Event)
}

// DefaultConfig returns the configuration with the source at cave.DefaultSource.
func DefaultConfig() Config {
	return Config{
		Source:    cave.DefaultSource,
		MaxGrains: DefaultMaxGrains,
	}
}

// Configuration keys accepted by ParseConfig.
const (
	ParamSourceX         = "source_x"
	ParamSourceY         = "source_y"
	ParamMaxGrains       = "max_grains"
	ParamRestartAtSource = "restart_at_source"
)

// ParseConfig creates a Config from a configuration string like
// "source_x=500,source_y=0,max_grains=1000000,restart_at_source".
//
// Keys not given keep the DefaultConfig values. Unknown keys are an error.
func ParseConfig(config string) (cfg Config, err error) {
	cfg = DefaultConfig()
	if strings.TrimSpace(config) == "" {
		return
	}
	params := parameters.NewFromConfigString(config)
	if cfg.Source[0], err = parameters.PopParamOr(params, ParamSourceX, cfg.Source[0]); err != nil {
		return
	}
	if cfg.Source[1], err = parameters.PopParamOr(params, ParamSourceY, cfg.Source[1]); err != nil {
		return
	}
	if cfg.MaxGrains, err = parameters.PopParamOr(params, ParamMaxGrains, cfg.MaxGrains); err != nil {
		return
	}
	if cfg.RestartAtSource, err = parameters.PopParamOr(params, ParamRestartAtSource, cfg.RestartAtSource); err != nil {
		return
	}
	if len(params) > 0 {
		unknown := slices.Collect(generics.SortedKeys(params))
		err = errors.Errorf("unknown simulation configuration keys %q in %q", unknown, config)
		return
	}
	err = cfg.Validate()
	return
}

// Validate returns an error if the configuration can't be used.
func (cfg Config) Validate() error {
	if cfg.Source.X() < 0 || cfg.Source.Y() < 0 {
		return errors.Errorf("invalid source %s: coordinates must be non-negative", cfg.Source)
	}
	return nil
}

func (cfg Config) notify(e Event) {
	if cfg.OnGrain != nil {
		cfg.OnGrain(e)
	}
}
