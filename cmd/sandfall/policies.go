package main

import (
	"context"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/janpfeifer/sandfall/internal/sim"
	"github.com/janpfeifer/sandfall/internal/ui/spinning"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"strings"
	"time"
)

// parsePolicies converts the -policy flag to the list of policies to simulate.
func parsePolicies(flagValue string) ([]sim.Policy, error) {
	if strings.ToLower(flagValue) == "both" {
		return sim.Policies, nil
	}
	var policies []sim.Policy
	for _, name := range strings.Split(flagValue, ",") {
		p, err := sim.ParsePolicy(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

// runPolicies runs one simulation per policy, each on its own clone of initial.
//
// Simulations are independent, so they run in parallel, but each one is strictly sequential.
// It returns the results and the final maps, in the order of policies.
// If progress is not nil, it is incremented for every grain dropped.
func runPolicies(ctx context.Context, initial *cave.Map, policies []sim.Policy, cfg sim.Config,
	progress *spinning.Spinning) (results []sim.Result, finals []*cave.Map, err error) {
	results = make([]sim.Result, len(policies))
	finals = make([]*cave.Map, len(policies))
	if progress != nil {
		cfg.OnGrain = func(sim.Event) { progress.Add(1) }
	}
	var wg errgroup.Group
	for ii, policy := range policies {
		finals[ii] = initial.Clone()
		wg.Go(func() error {
			start := time.Now()
			var err error
			results[ii], err = sim.Run(ctx, finals[ii], policy, cfg)
			if err != nil {
				return err
			}
			klog.V(1).Infof("%s: %d grains in %s (%d moves)", policy, results[ii].Grains,
				time.Since(start), results[ii].Moves)
			return nil
		})
	}
	err = wg.Wait()
	return
}
