package fleet

import (
	"errors"
	"sync"
	"testing"
	"time"
)

const tickPeriod = 100 * time.Millisecond

func TestSimulator_StepsClimbToMaxUnderBudget(t *testing.T) {
	hs := NewHeadlessSim(WithFixedCost(time.Millisecond))
	want := []int{5, 6, 7, 8, 9, 10, 10}
	for i, w := range want {
		rep := hs.Sim.Tick(tickPeriod)
		if rep.Steps != w {
			t.Fatalf("tick %d: expected %d steps, got %d", i+1, w, rep.Steps)
		}
	}
}

func TestSimulator_StepsHalveOverBudget(t *testing.T) {
	hs := NewHeadlessSim(WithFixedCost(100 * time.Millisecond))
	want := []int{2, 1, 0, 0}
	for i, w := range want {
		rep := hs.Sim.Tick(tickPeriod)
		if rep.NextSteps != w {
			t.Fatalf("tick %d: expected next steps %d, got %d", i+1, w, rep.NextSteps)
		}
	}
	if hs.Log.CountCategory(CatSim, KeySteps) != 3 {
		t.Fatalf("expected 3 step-change events, got %d", hs.Log.CountCategory(CatSim, KeySteps))
	}
}

func TestSimulator_ZeroStepsRecovers(t *testing.T) {
	hs := NewHeadlessSim(
		WithDrone("d1", 0, 0, ""),
		WithSimOptions(WithSteps(0, 10)),
	)
	rep := hs.Sim.Tick(tickPeriod)
	if rep.Steps != 0 || rep.NextSteps != 1 {
		t.Fatalf("expected 0 → 1 steps, got %d → %d", rep.Steps, rep.NextSteps)
	}
	if p := hs.Drone("d1").Power(); p != 50 {
		t.Fatalf("expected no integration with zero steps, got power %v", p)
	}
}

func TestSimulator_StepsSurviveReload(t *testing.T) {
	hs := NewHeadlessSim(WithFixedCost(time.Millisecond))
	hs.RunTicks(3, tickPeriod)
	hs.Sim.Load(nil, []*Drone{NewDrone("x")})
	if got := hs.Sim.Steps(); got != 8 {
		t.Fatalf("expected step count 8 to survive reload, got %d", got)
	}
}

func TestSimulator_SubStepsCoverElapsedTime(t *testing.T) {
	hs := NewHeadlessSim(WithDrone("d1", 0, 0, ""))
	hs.RunTicks(10, tickPeriod)
	// 1s of charging at 10/s on a 200 scale = +5%.
	if p := hs.Drone("d1").Power(); p < 54.99 || p > 55.01 {
		t.Fatalf("expected ~55%% after 1s of charging, got %v", p)
	}
}

func TestSimulator_GoalResolvedFromTargetServer(t *testing.T) {
	hs := NewHeadlessSim(
		WithServer("A", 0, 0, red),
		WithServer("B", 400, 300, blue),
		WithDrone("d1", 10, 10, "B"),
	)
	hs.RunTicks(1, tickPeriod)
	if g := hs.Drone("d1").Goal(); !g.Equal(V2(400, 300)) {
		t.Fatalf("expected goal at server B, got %v", g)
	}
}

func TestSimulator_UnknownServerKeepsGoal(t *testing.T) {
	hs := NewHeadlessSim(
		WithServer("A", 0, 0, red),
		WithDrone("d1", 10, 10, "missing"),
	)
	hs.RunTicks(1, tickPeriod)
	if g := hs.Drone("d1").Goal(); !g.Equal(defaultDroneGoal) {
		t.Fatalf("expected default goal to be held, got %v", g)
	}
}

func TestSimulator_StartNextUsesNameOrder(t *testing.T) {
	hs := NewHeadlessSim(
		WithDrone("charlie", 0, 0, ""),
		WithDrone("alpha", 0, 0, ""),
		WithDrone("bravo", 0, 0, ""),
	)
	name, ok := hs.Sim.StartNext(V2(300, 300))
	if !ok || name != "alpha" {
		t.Fatalf("expected alpha to start first, got %q ok=%v", name, ok)
	}
	name, _ = hs.Sim.StartNext(V2(300, 300))
	if name != "bravo" {
		t.Fatalf("expected bravo next, got %q", name)
	}
	if g := hs.Drone("alpha").Goal(); !g.Equal(V2(300, 300)) {
		t.Fatalf("expected clicked goal, got %v", g)
	}
	if hs.Drone("alpha").TargetServer() != "" {
		t.Fatal("expected target server untouched")
	}
	hs.Sim.StartNext(V2(1, 1))
	if _, ok := hs.Sim.StartNext(V2(1, 1)); ok {
		t.Fatal("expected no landed drone left")
	}
	if hs.Log.CountCategory(CatCommand, KeyStart) != 3 {
		t.Fatalf("expected 3 start commands logged, got %d", hs.Log.CountCategory(CatCommand, KeyStart))
	}
}

func TestSimulator_CommandsRejectUnknownDrone(t *testing.T) {
	hs := NewHeadlessSim(WithDrone("d1", 0, 0, ""))
	if _, err := hs.Sim.Start("ghost"); !errors.Is(err, ErrUnknownDrone) {
		t.Fatalf("expected ErrUnknownDrone, got %v", err)
	}
	if err := hs.Sim.SetGoal("ghost", V2(1, 1)); !errors.Is(err, ErrUnknownDrone) {
		t.Fatalf("expected ErrUnknownDrone, got %v", err)
	}
	applied, err := hs.Sim.Stop("d1")
	if err != nil || applied {
		t.Fatalf("expected stop on landed drone to be a silent no-op, got applied=%v err=%v", applied, err)
	}
}

func TestSimulator_CloseDronesRepelEachOther(t *testing.T) {
	hs := NewHeadlessSim(
		WithDrone("a", 100, 100, ""),
		WithDrone("b", 140, 100, ""),
	)
	for _, n := range []string{"a", "b"} {
		d := hs.Drone(n)
		d.status = Hovering
		d.height = HoveringHeight
		d.power = MaxPower
		d.SetGoalPosition(V2(120, 400))
	}
	rep := hs.Sim.Tick(tickPeriod)
	if rep.Colliding != 2 {
		t.Fatalf("expected both drones colliding, got %d", rep.Colliding)
	}
	if hs.Drone("a").CollisionForce().X >= 0 || hs.Drone("b").CollisionForce().X <= 0 {
		t.Fatalf("expected forces pointing apart, got a=%v b=%v",
			hs.Drone("a").CollisionForce(), hs.Drone("b").CollisionForce())
	}
	if hs.Log.CountCategory(CatCollision, KeyBegin) != 2 {
		t.Fatalf("expected 2 collision begin events, got %d", hs.Log.CountCategory(CatCollision, KeyBegin))
	}
}

func TestSimulator_LandedDronesExertNoForce(t *testing.T) {
	hs := NewHeadlessSim(
		WithDrone("a", 100, 100, ""),
		WithDrone("b", 110, 100, ""),
	)
	a := hs.Drone("a")
	a.status = Hovering
	a.height = HoveringHeight
	a.power = MaxPower
	a.SetGoalPosition(V2(100, 500))
	hs.Sim.Tick(tickPeriod)
	if a.HasCollision() {
		t.Fatal("expected landed neighbour to be ignored")
	}
}

func TestSimulator_FlightCompletes(t *testing.T) {
	hs := NewHeadlessSim(
		WithServer("base", 300, 0, red),
		WithDrone("d1", 0, 0, "base"),
	)
	if _, err := hs.Sim.Start("d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hs.RunUntil(AllLanded, 600, tickPeriod) {
		t.Fatalf("expected drone to land again, log:\n%s", hs.Log.Format())
	}

	order := []string{Takeoff.String(), Hovering.String(), Landing.String(), Landed.String()}
	var seen []string
	for _, e := range hs.Log.Filter(CatStatus, "") {
		seen = append(seen, e.Key)
	}
	if len(seen) != len(order) {
		t.Fatalf("expected transitions %v, got %v", order, seen)
	}
	for i := range order {
		if seen[i] != order[i] {
			t.Fatalf("expected transitions %v, got %v", order, seen)
		}
	}
	if _, ok := hs.Log.LastOf(CatLanding, ""); !ok {
		t.Fatal("expected a landing cause to be recorded")
	}
}

func TestSimulator_StopAll(t *testing.T) {
	hs := NewHeadlessSim(
		WithDrone("a", 0, 0, ""),
		WithDrone("b", 0, 200, ""),
	)
	hs.Sim.StartNext(V2(500, 0))
	hs.Sim.StartNext(V2(500, 200))
	if n := hs.Sim.StopAll(); n != 2 {
		t.Fatalf("expected 2 drones stopped, got %d", n)
	}
	if !hs.Log.HasEntry(CatLanding, "stopped", "") {
		t.Fatal("expected stopped landing cause")
	}
}

func TestSimulator_SnapshotIsACopy(t *testing.T) {
	hs := NewHeadlessSim(WithServer("A", 5, 5, red), WithDrone("d1", 0, 0, "A"))
	snap := hs.Sim.Snapshot()
	snap.Drones[0].Position = V2(999, 999)
	snap.Servers[0].Name = "Z"
	if hs.Drone("d1").Position().Equal(V2(999, 999)) {
		t.Fatal("expected snapshot mutation not to leak into the fleet")
	}
	if _, ok := hs.Sim.Classifier().FindByName("A"); !ok {
		t.Fatal("expected server list untouched by snapshot mutation")
	}
}

func TestSimulator_TicksAndSnapshotsDoNotRace(t *testing.T) {
	hs := NewHeadlessSim(
		WithRealClock(),
		WithDrone("a", 0, 0, ""),
		WithDrone("b", 50, 0, ""),
	)
	hs.Sim.StartNext(V2(400, 400))
	hs.Sim.StartNext(V2(400, 0))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hs.Sim.Tick(tickPeriod)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = hs.Sim.Snapshot()
		}
	}()
	wg.Wait()
}

func TestTickReport_StatusText(t *testing.T) {
	rep := TickReport{Cost: 12 * time.Millisecond, Steps: 7}
	if got := rep.StatusText(); got != "duration:12 steps=7" {
		t.Fatalf("expected status text, got %q", got)
	}
}

func TestSimulator_LoadClearsNewServersOnly(t *testing.T) {
	hs := NewHeadlessSim()
	hs.Sim.Load([]Server{NewServer("A", V2(0, 0), red)}, nil)
	prev := hs.Sim.Classifier()
	prev.servers[0].neighbors = []string{"B"}

	next := NewServer("C", V2(10, 10), blue)
	next.AddNeighbor("D")
	hs.Sim.Load([]Server{next}, nil)

	if got := prev.servers[0].Neighbors(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected replaced classifier untouched, got %v", got)
	}
	for _, s := range hs.Sim.Classifier().Servers() {
		if len(s.Neighbors()) != 0 {
			t.Fatalf("expected neighbors of %s cleared on load, got %v", s.Name, s.Neighbors())
		}
	}
}
