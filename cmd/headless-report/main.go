package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/Garsondee/Drone-Fleet/internal/logging"
	"github.com/Garsondee/Drone-Fleet/internal/recorder"
	"github.com/Garsondee/Drone-Fleet/internal/report"
	"github.com/Garsondee/Drone-Fleet/internal/scenario"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// runConfig holds the per-run settings shared by every run.
type runConfig struct {
	scenario    string
	ticks       int
	period      time.Duration
	cost        time.Duration // fixed tick cost; 0 measures real time
	launchEvery int
	width       int
	height      int
	sim         []fleet.Option
}

type runStats struct {
	run         report.Run
	seed        int64
	launches    int
	collidedBy  map[string]struct{}
	causeByName map[string]map[string]int
}

func main() {
	flags := pflag.NewFlagSet("headless-report", pflag.ExitOnError)
	configDir := flags.String("config-dir", ".", "directory holding "+config.FileName)
	scenarioPath := flags.String("scenario", "", "scenario file; empty runs the built-in demo")
	runs := flags.Int("runs", 3, "number of headless simulation runs")
	ticks := flags.Int("ticks", 600, "ticks per run")
	period := flags.Duration("period", 100*time.Millisecond, "wall time handed to each tick")
	cost := flags.Duration("cost", time.Millisecond, "fixed compute cost per tick; 0 measures real time")
	launchEvery := flags.Int("launch-every", 20, "ticks between launches of the next landed drone")
	seedBase := flags.Int64("seed-base", 42, "base RNG seed for launch goals of run 1")
	xlsx := flags.String("xlsx", "", "write a workbook with every run to this path")
	record := flags.Bool("record", false, "record runs with the configured storage backend")
	flags.String("storage", "memory", "recording backend used with --record")
	_ = flags.Parse(os.Args[1:])

	if *runs <= 0 {
		fmt.Println("error: --runs must be > 0")
		return
	}
	if *ticks <= 0 {
		fmt.Println("error: --ticks must be > 0")
		return
	}
	if *launchEvery <= 0 {
		fmt.Println("error: --launch-every must be > 0")
		return
	}

	if err := config.Load(*configDir); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if err := config.Bind(flags, map[string]string{"storage": "storage.type"}); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	logger, closer, err := logging.Setup(logging.Options{
		Level:   config.GetString("logLevel"),
		Name:    "headless-report",
		Console: os.Stderr,
	})
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	defer closer.Close()

	var rec *recorder.Recorder
	if *record {
		if rec, err = recorder.FromConfig(logger); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		defer rec.Close()
	}

	viewer := config.Viewer()
	rc := runConfig{
		scenario:    *scenarioPath,
		ticks:       *ticks,
		period:      *period,
		cost:        *cost,
		launchEvery: *launchEvery,
		width:       viewer.Width,
		height:      viewer.Height,
		sim:         config.Sim().Options(),
	}
	loader := scenario.NewLoader(logger)

	fmt.Printf("=== Headless Fleet Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d period=%s cost=%s launch_every=%d seed_base=%d\n\n",
		displayName(rc.scenario), *runs, rc.ticks, rc.period, rc.cost, rc.launchEvery, *seedBase)

	all := make([]runStats, 0, *runs)
	for i := 0; i < *runs; i++ {
		stats, err := runOnce(i+1, *seedBase+int64(i), rc, loader, rec, logger)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, stats)
		printRun(stats)
	}
	printAggregate(all)

	if *xlsx != "" {
		list := make([]report.Run, len(all))
		for i, rs := range all {
			list[i] = rs.run
		}
		if err := report.WriteWorkbook(*xlsx, list); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("\nworkbook written to %s\n", *xlsx)
	}
}

// runOnce flies one scenario for rc.ticks ticks. Every launchEvery ticks the
// next landed drone is sent to a random point, the way a viewer click would.
func runOnce(index int, seed int64, rc runConfig, loader *scenario.Loader, rec *recorder.Recorder,
	log zerolog.Logger) (runStats, error) {
	f, err := loader.Resolve(rc.scenario)
	if err != nil {
		return runStats{}, err
	}

	opts := []fleet.SimOption{fleet.WithFleet(f.Servers, f.Drones), fleet.WithSimOptions(rc.sim...)}
	if rc.cost > 0 {
		opts = append(opts, fleet.WithFixedCost(rc.cost))
	} else {
		opts = append(opts, fleet.WithRealClock())
	}
	hs := fleet.NewHeadlessSim(opts...)

	if rec != nil {
		hs.Sim.AddSink(rec)
		if _, err := rec.Start(fmt.Sprintf("%s#%d", f.Name, index), f.Source, rc.period); err != nil {
			return runStats{}, err
		}
	}

	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- reproducible launch goals
	rep := report.NewReporter(0)
	launches := 0
	for t := 0; t < rc.ticks; t++ {
		if t%rc.launchEvery == 0 {
			goal := fleet.V2(rng.Float64()*float64(rc.width), rng.Float64()*float64(rc.height))
			if _, ok := hs.Sim.StartNext(goal); ok {
				launches++
			}
		}
		tr := hs.Sim.Tick(rc.period)
		snap := hs.Sim.Snapshot()
		rep.Collect(tr, snap)
		if rec != nil {
			rec.OnTick(tr, snap)
		}
	}

	if rec != nil {
		if err := rec.End(); err != nil {
			log.Error().Err(err).Int("run", index).Msg("Ending recording session")
		}
	}

	rs := runStats{
		run:         report.Analyze(index, f.Name, rc.ticks, hs.Log, rep, hs.Sim.Snapshot()),
		seed:        seed,
		launches:    launches,
		collidedBy:  map[string]struct{}{},
		causeByName: map[string]map[string]int{},
	}
	for _, d := range rs.run.Final {
		causes := map[string]int{}
		for _, e := range hs.Log.FilterDrone(d.Name) {
			switch e.Category {
			case fleet.CatCollision:
				if e.Key == fleet.KeyBegin {
					rs.collidedBy[d.Name] = struct{}{}
				}
			case fleet.CatLanding:
				causes[e.Key]++
			}
		}
		rs.causeByName[d.Name] = causes
	}
	return rs, nil
}

func printRun(rs runStats) {
	r := rs.run
	fmt.Printf("--- Run %d (seed=%d) ---\n", r.Index, rs.seed)
	fmt.Printf("phase_markers: first_takeoff=%d first_hovering=%d first_collision=%d first_landing=%d all_landed=%d\n",
		r.Markers.FirstTakeoff, r.Markers.FirstHovering, r.Markers.FirstCollision, r.Markers.FirstLanding, r.Markers.AllLanded)
	fmt.Printf("event_totals: launches=%d status=%d landing=%d collision=%d command=%d step_change=%d low_power=%d arrived=%d\n",
		rs.launches, r.Totals.Status, r.Totals.Landing, r.Totals.Collision, r.Totals.Command,
		r.Totals.StepChange, r.Totals.LowPower, r.Totals.Arrived)
	fmt.Printf("collided_drones: %s\n", joinSet(rs.collidedBy))
	if w := r.Window; w != nil {
		fmt.Printf("window_samples=%d window_tick_range=%d..%d\n", w.SampleCount, w.FromTick, w.ToTick)
		fmt.Printf("window_loop_avg: steps=%.1f cost=%.2fms cost_max=%.2fms halvings=%d\n",
			w.AvgSteps, w.AvgCostMs, w.MaxCostMs, w.Halvings)
		fmt.Printf("window_fleet_avg: airborne=%.1f colliding=%.1f power=%.1f%%\n",
			w.AvgAirborne, w.AvgColliding, w.AvgPower)
	}
	fmt.Println("final_state:")
	for _, d := range r.Final {
		fmt.Printf("  %-10s %-9s pos=%.0f,%.0f power=%.0f%% server=%s\n",
			d.Name, d.Status, d.Position.X, d.Position.Y, d.Power, orDash(d.TargetServer))
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalLaunches := 0
	totalStatus := 0
	totalCollision := 0
	totalStepChange := 0
	totalLowPower := 0
	totalArrived := 0

	takeoffTicks := make([]int, 0, len(all))
	hoveringTicks := make([]int, 0, len(all))
	collisionTicks := make([]int, 0, len(all))
	landingTicks := make([]int, 0, len(all))
	collidedGlobal := map[string]struct{}{}

	type droneAgg struct {
		powerSum float64
		count    int
		landed   int
		causes   map[string]int
	}
	drones := map[string]*droneAgg{}

	for _, rs := range all {
		r := rs.run
		totalLaunches += rs.launches
		totalStatus += r.Totals.Status
		totalCollision += r.Totals.Collision
		totalStepChange += r.Totals.StepChange
		totalLowPower += r.Totals.LowPower
		totalArrived += r.Totals.Arrived
		if r.Markers.FirstTakeoff >= 0 {
			takeoffTicks = append(takeoffTicks, r.Markers.FirstTakeoff)
		}
		if r.Markers.FirstHovering >= 0 {
			hoveringTicks = append(hoveringTicks, r.Markers.FirstHovering)
		}
		if r.Markers.FirstCollision >= 0 {
			collisionTicks = append(collisionTicks, r.Markers.FirstCollision)
		}
		if r.Markers.FirstLanding >= 0 {
			landingTicks = append(landingTicks, r.Markers.FirstLanding)
		}
		for name := range rs.collidedBy {
			collidedGlobal[name] = struct{}{}
		}
		for _, d := range r.Final {
			ag, ok := drones[d.Name]
			if !ok {
				ag = &droneAgg{causes: map[string]int{}}
				drones[d.Name] = ag
			}
			ag.powerSum += d.Power
			ag.count++
			if d.Status == fleet.Landed {
				ag.landed++
			}
			for cause, n := range rs.causeByName[d.Name] {
				ag.causes[cause] += n
			}
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("avg_events_per_run: launches=%.1f status=%.1f collision=%.1f step_change=%.1f low_power=%.1f arrived=%.1f\n",
		avg(totalLaunches, len(all)), avg(totalStatus, len(all)), avg(totalCollision, len(all)),
		avg(totalStepChange, len(all)), avg(totalLowPower, len(all)), avg(totalArrived, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_takeoff=%s first_hovering=%s first_collision=%s first_landing=%s\n",
		avgTickString(takeoffTicks), avgTickString(hoveringTicks), avgTickString(collisionTicks), avgTickString(landingTicks))
	fmt.Printf("unique_collided_drones=%d [%s]\n", len(collidedGlobal), joinSet(collidedGlobal))

	fmt.Println("\n=== Per-Drone Final State ===")
	names := make([]string, 0, len(drones))
	for name := range drones {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ag := drones[name]
		fmt.Printf("  %-10s avg_power=%.0f%% landed=%.0f%%", name, ag.powerSum/float64(ag.count),
			float64(ag.landed)/float64(ag.count)*100)
		if c := topCause(ag.causes); c != "" {
			fmt.Printf("  top_landing=%s", c)
		}
		fmt.Println()
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

// topCause returns the most frequent landing cause as "cause(n)". Ties go to
// the alphabetically first cause.
func topCause(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	best := ""
	bestN := 0
	for k, v := range counts {
		if v > bestN || (v == bestN && k < best) {
			best = k
			bestN = v
		}
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}

func displayName(path string) string {
	if path == "" {
		return scenario.DemoName
	}
	return path
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
