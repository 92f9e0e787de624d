// sandfall reads the description of the rock in a cave and counts how many grains of sand
// settle in it, falling from a fixed source:
//
//   - abyss: until sand starts flowing past the lowest rock, into the abyss.
//   - floor: with a solid floor two rows below the lowest rock, until sand blocks the source.
//
// The rock description has one polyline per line, with vertices "x,y" joined by "->".
//
// Example:
//
//	$ sandfall -input=cave.txt -print
//	$ sandfall -input=cave.txt -policy=floor -watch -delay=5ms
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/sandfall/internal/cave"
	"github.com/janpfeifer/sandfall/internal/profilers"
	"github.com/janpfeifer/sandfall/internal/rocks"
	"github.com/janpfeifer/sandfall/internal/sim"
	"github.com/janpfeifer/sandfall/internal/ui/cli"
	"github.com/janpfeifer/sandfall/internal/ui/spinning"
	"github.com/janpfeifer/sandfall/internal/ui/watch"
	"github.com/pkg/errors"
	"io"
	"k8s.io/klog/v2"
	"os"
	"time"
)

var (
	flagInput  = flag.String("input", "", "File with the rock description. If empty or \"-\", reads from stdin.")
	flagPolicy = flag.String("policy", "both", "Termination policy: abyss, floor or both.")
	flagConfig = flag.String("config", "",
		"Simulation configuration, e.g. \"source_x=500,source_y=0,max_grains=1000000,restart_at_source\".")
	flagPrint = flag.Bool("print", false, "Print the cave after each simulation.")
	flagColor = flag.Bool("color", true, "Use colors when printing.")
	flagQuiet = flag.Bool("quiet", false, "Only print the grain counts, one per line.")
	flagWatch = flag.Bool("watch", false, "Animate the simulation on the terminal. "+
		"If -policy=both, the floor policy is animated.")
	flagDelay = flag.Duration("delay", 10*time.Millisecond, "Delay between grains with -watch.")
	flagSound = flag.Bool("sound", false, "Play a tick for each grain with -watch.")

	// globalCtx is cancelled on interrupt (Ctrl+C): simulations stop before the next grain.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Capture Control+C
	var cancel func()
	globalCtx, cancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	polylines, err := readRock(*flagInput)
	if err != nil {
		klog.Exitf("Failed to read rock description: %+v", err)
	}
	initial := cave.BuildMap(polylines)
	if initial.IsEmpty() {
		klog.Exitf("No rock in the cave described in %q, nothing to simulate", *flagInput)
	}
	cfg := must.M1(sim.ParseConfig(*flagConfig))
	policies := must.M1(parsePolicies(*flagPolicy))

	if *flagWatch {
		must.M(runWatch(globalCtx, initial, policies[len(policies)-1], cfg))
		return
	}

	ui := cli.New(*flagColor, false)
	var progress *spinning.Spinning
	if !*flagQuiet {
		progress = spinning.New(globalCtx, "grains")
	}
	results, finals, err := runPolicies(globalCtx, initial, policies, cfg, progress)
	if progress != nil {
		progress.Done()
	}
	if err != nil {
		klog.Exitf("Simulation failed: %+v", err)
	}

	if *flagQuiet {
		for _, r := range results {
			fmt.Println(r.Grains)
		}
		return
	}
	if *flagPrint {
		for ii, r := range results {
			fmt.Printf("\n%s:\n", r.Policy)
			ui.PrintMap(finals[ii], cfg.Source, renderFloorY(r))
		}
	}
	ui.PrintResults(results...)
}

// readRock parses the rock description from path, or from stdin if path is empty or "-".
func readRock(path string) ([]cave.Polyline, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %q", path)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return rocks.Parse(r)
}

// renderFloorY returns the row drawn as floor: the virtual floor for PolicyFloor, or where it
// would be for PolicyAbyss.
func renderFloorY(r sim.Result) int {
	if r.FloorY > 0 {
		return r.FloorY
	}
	return r.LowestY + 2
}

// runWatch runs the simulation for policy, and then replays it on the terminal.
func runWatch(ctx context.Context, initial *cave.Map, policy sim.Policy, cfg sim.Config) error {
	var recorder watch.Recorder
	cfg.OnGrain = recorder.Record
	result, err := sim.Run(ctx, initial.Clone(), policy, cfg)
	if err != nil {
		return err
	}
	var sound *watch.Sound
	if *flagSound {
		sound = &watch.Sound{}
		if err := sound.Init(); err != nil {
			// Non-fatal, it can run without sound.
			klog.Warningf("Sound disabled: %v", err)
		}
		defer sound.Close()
	}
	err = watch.Run(ctx, initial, policy, cfg.Source, result.FloorY, recorder.Events, *flagDelay, sound)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println(cli.FormatResult(result))
	return nil
}
