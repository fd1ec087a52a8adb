package pursuit

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"horde.ai/internal/sim/logic/vecmath"
)

func TestBroadcast_FiveHunterScenario(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 7, nil)
	positions := []Vec3{
		vecmath.V(100, 0, 0),
		vecmath.V(-100, 0, 0),
		vecmath.Zero, // spotter sits in the middle of the roster
		vecmath.V(0, 0, -100),
		vecmath.V(100, 0, 100),
	}
	ids := []string{"H1", "H2", "H3", "H4", "H5"}
	hunters := make([]*Agent, len(ids))
	for i, id := range ids {
		hunters[i] = mustSpawn(t, d, id, newFakeNav(positions[i]))
	}
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))

	evs := d.Tick(1, dt, preyList(prey), nil)
	for i, h := range hunters {
		want := Alerted
		if i == 2 {
			want = Chasing
		}
		if h.CurrentState() != want {
			t.Fatalf("%s state=%s want %s", h.ID(), h.CurrentState(), want)
		}
		if pos, ok := h.LastKnownTarget(); !ok || pos != prey.pos {
			t.Fatalf("%s last known=%+v ok=%v", h.ID(), pos, ok)
		}
	}
	if got := countEvents(evs, EventAlerted); got != 4 {
		t.Fatalf("alerted events=%d want 4", got)
	}
	if got := countCues(evs, CueAlertResponse); got != 4 {
		t.Fatalf("response cues=%d want 4", got)
	}

	evs = d.Tick(2, dt, preyList(prey), nil)
	if got := countEvents(evs, EventAlerted); got != 0 {
		t.Fatalf("alert re-delivered: %d", got)
	}
	for i, h := range hunters {
		if i != 2 && h.CurrentState() != Alerted {
			t.Fatalf("%s state=%s want ALERTED", h.ID(), h.CurrentState())
		}
	}
}

func TestBroadcast_SkipsNonSearchingAndAssignsSeq(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 7, nil)
	a := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	b := mustSpawn(t, d, "H2", newFakeNav(vecmath.V(50, 0, 0)))
	c := mustSpawn(t, d, "H3", newFakeNav(vecmath.V(-50, 0, 0)))
	b.AlertTo(vecmath.V(1, 0, 1), 0)

	if n := d.Broadcast(AlertEvent{From: "H1", Pos: vecmath.V(3, 0, 3)}); n != 1 {
		t.Fatalf("alerted %d hunters want 1", n)
	}
	if a.CurrentState() != Searching {
		t.Fatalf("origin hunter must not alert itself")
	}
	if pos, _ := b.LastKnownTarget(); pos != vecmath.V(1, 0, 1) {
		t.Fatalf("already alerted hunter was retargeted to %+v", pos)
	}
	if c.CurrentState() != Alerted || c.rec.AlertSeq != 1 {
		t.Fatalf("receiver state=%s seq=%d", c.CurrentState(), c.rec.AlertSeq)
	}
	if d.Counters().AlertSeq != 1 {
		t.Fatalf("alert seq=%d", d.Counters().AlertSeq)
	}
}

func TestSearchTarget_SectorsFollowRosterIndex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SearchJitter = 0
	cfg.SearchMinRadius = 10
	cfg.SearchMaxRadius = 10
	d := NewDirectory(cfg, 1, nil)
	var hs []*Agent
	for _, id := range []string{"H1", "H2", "H3", "H4"} {
		hs = append(hs, mustSpawn(t, d, id, newFakeNav(vecmath.Zero)))
	}
	for i, h := range hs {
		p, ok := d.SearchTarget(h)
		if !ok {
			t.Fatalf("%s: sampling failed", h.ID())
		}
		want := vecmath.YawDir(90 * float64(i)).Scale(10)
		if !near(p, want, 1e-9) {
			t.Fatalf("%s target=%+v want %+v", h.ID(), p, want)
		}
	}

	if err := d.Despawn("H2"); err != nil {
		t.Fatalf("despawn: %v", err)
	}
	if d.IndexOf("H3") != 1 {
		t.Fatalf("H3 index=%d want 1", d.IndexOf("H3"))
	}
	p, _ := d.SearchTarget(hs[2])
	if want := vecmath.YawDir(120).Scale(10); !near(p, want, 1e-9) {
		t.Fatalf("after churn target=%+v want %+v", p, want)
	}
}

func TestSearch_SamplingFailureRetriesNextTick(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDirectory(cfg, 1, nil)
	nav := newFakeNav(vecmath.Zero)
	nav.sampleFail = true
	h := mustSpawn(t, d, "H1", nav)
	if nav.setCalls != 0 || h.rec.SearchWait > 0 {
		t.Fatalf("setCalls=%d wait=%v", nav.setCalls, h.rec.SearchWait)
	}

	d.Tick(1, dt, nil, nil)
	if nav.setCalls != 0 {
		t.Fatalf("destination set despite sampling failure")
	}

	nav.sampleFail = false
	d.Tick(2, dt, nil, nil)
	if nav.setCalls != 1 {
		t.Fatalf("setCalls=%d want 1", nav.setCalls)
	}
	if h.rec.SearchWait != cfg.SearchWait {
		t.Fatalf("wait=%v want %v", h.rec.SearchWait, cfg.SearchWait)
	}
	dist := vecmath.Dist(nav.dest, vecmath.Zero)
	if dist < cfg.SearchMinRadius-1e-9 || dist > cfg.SearchMaxRadius+1e-9 {
		t.Fatalf("search distance %v outside band", dist)
	}
}

func TestFlankSlot_PerpendicularWhenAlone(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	h := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	p, ok := d.FlankSlot(h, vecmath.V(0, 0, 10))
	if !ok || !near(p, vecmath.V(-8, 0, 10), 1e-9) {
		t.Fatalf("slot=%+v ok=%v", p, ok)
	}
}

func TestFlankSlot_SpreadsAroundTarget(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	h1 := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	mustSpawn(t, d, "H2", newFakeNav(vecmath.V(0, 0, 15)))
	h3 := mustSpawn(t, d, "H3", newFakeNav(vecmath.V(0, 0, 12)))
	d.rebuildSnapshot()
	target := vecmath.V(0, 0, 10)

	p, _ := d.FlankSlot(h1, target)
	if !near(p, vecmath.V(0, 0, 18), 1e-9) {
		t.Fatalf("H1 slot=%+v", p)
	}
	p, _ = d.FlankSlot(h3, target)
	want := target.Add(vecmath.YawDir(240).Scale(8))
	if !near(p, want, 1e-9) {
		t.Fatalf("H3 slot=%+v want %+v", p, want)
	}
}

func TestFlocking_RosterOfOneLeavesDestination(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	nav := newFakeNav(vecmath.Zero)
	nav.vel = vecmath.V(1, 0, 0)
	mustSpawn(t, d, "H1", nav)
	dest := nav.dest
	calls := nav.setCalls

	d.Tick(1, dt, nil, nil)
	if nav.dest != dest || nav.setCalls != calls {
		t.Fatalf("destination moved from %+v to %+v", dest, nav.dest)
	}
}

func TestFlocking_PerturbsDestinationTowardPeer(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	nav := newFakeNav(vecmath.Zero)
	mustSpawn(t, d, "H1", nav)
	mustSpawn(t, d, "H2", newFakeNav(vecmath.V(3, 0, 0)))
	dest := nav.dest

	d.Tick(1, dt, nil, nil)
	// Cohesion only: (2,0,0) * weight 0.5 * dt.
	want := dest.Add(vecmath.V(0.1, 0, 0))
	if !near(nav.dest, want, 1e-9) {
		t.Fatalf("dest=%+v want %+v", nav.dest, want)
	}
}

func TestRoster_ChangesDuringTickAreDeferred(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	var lenInside, idxInside int
	d.Subscribe(func(ev Event) {
		if ev.Type != EventSpotted {
			return
		}
		if _, err := d.Spawn("H2", newFakeNav(vecmath.V(50, 0, 50))); err != nil {
			t.Errorf("spawn in listener: %v", err)
		}
		if err := d.Despawn("H1"); err != nil {
			t.Errorf("despawn in listener: %v", err)
		}
		lenInside = d.Len()
		idxInside = d.IndexOf("H1")
	})
	d.DrainEvents()

	evs := d.Tick(1, dt, preyList(newFakePrey("P1", vecmath.V(0, 0, 20))), nil)
	if lenInside != 1 || idxInside != 0 {
		t.Fatalf("roster changed mid-tick: len=%d idx=%d", lenInside, idxInside)
	}
	if _, ok := d.Get("H1"); ok {
		t.Fatalf("H1 should be gone after the tick")
	}
	if _, ok := d.Get("H2"); !ok || d.Len() != 1 {
		t.Fatalf("H2 should be registered, len=%d", d.Len())
	}
	if countEvents(evs, EventSpawned) != 1 || countEvents(evs, EventDespawned) != 1 {
		t.Fatalf("events=%+v", evs)
	}
}

func TestRoster_Errors(t *testing.T) {
	var buf bytes.Buffer
	d := NewDirectory(DefaultConfig(), 1, log.New(&buf, "", 0))
	mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))

	if _, err := d.Spawn("H1", newFakeNav(vecmath.Zero)); !errors.Is(err, ErrDuplicateHunter) {
		t.Fatalf("duplicate spawn err=%v", err)
	}
	if _, err := d.Spawn("H2", nil); !errors.Is(err, ErrNoNavigator) {
		t.Fatalf("nil navigator err=%v", err)
	}
	if _, err := d.Spawn("H2", nil); !errors.Is(err, ErrNoNavigator) {
		t.Fatalf("nil navigator err=%v", err)
	}
	if got := strings.Count(buf.String(), "H2"); got != 1 {
		t.Fatalf("missing navigator logged %d times, want once", got)
	}
	if err := d.Despawn("nope"); !errors.Is(err, ErrUnknownHunter) {
		t.Fatalf("despawn unknown err=%v", err)
	}
	err := d.Freeze([]string{"H1", "nope"}, 2)
	if !errors.Is(err, ErrUnknownHunter) {
		t.Fatalf("freeze unknown err=%v", err)
	}
	if h, _ := d.Get("H1"); !h.Frozen() {
		t.Fatalf("known hunter should still be frozen")
	}
}

func TestRestore_NilNavigatorIsDisabledAndDropped(t *testing.T) {
	var buf bytes.Buffer
	d := NewDirectory(DefaultConfig(), 1, log.New(&buf, "", 0))
	if _, err := d.Restore(Hunter{ID: "ghost", Num: 3, State: Chasing}, nil); err != nil {
		t.Fatalf("restore: %v", err)
	}
	mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))

	evs := d.Tick(1, dt, nil, nil)
	if countEvents(evs, EventDisabled) != 1 || countEvents(evs, EventDespawned) != 1 {
		t.Fatalf("events=%+v", evs)
	}
	if d.Len() != 1 || d.IndexOf("H1") != 0 {
		t.Fatalf("roster len=%d", d.Len())
	}
	if !strings.Contains(buf.String(), "ghost") {
		t.Fatalf("missing log line, got %q", buf.String())
	}
	if d.Counters().NextNum != 4 {
		t.Fatalf("next num=%d, restore must advance the counter", d.Counters().NextNum)
	}
}

func TestRecord_RestoreResumesRandomSource(t *testing.T) {
	cfg := DefaultConfig()
	d1 := NewDirectory(cfg, 42, nil)
	a := mustSpawn(t, d1, "H1", newFakeNav(vecmath.Zero))
	for i := uint64(0); i < 40; i++ {
		d1.Tick(i, dt, nil, nil)
	}
	rec := a.Record()
	if len(rec.RNG) == 0 {
		t.Fatalf("record carries no rng state")
	}

	d2 := NewDirectory(cfg, 42, nil)
	b, err := d2.Restore(rec, newFakeNav(vecmath.Zero))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if b.CurrentState() != a.CurrentState() || b.rec.SearchWait != a.rec.SearchWait {
		t.Fatalf("restored record differs")
	}
	for i := 0; i < 8; i++ {
		if x, y := a.uniform(0, 1), b.uniform(0, 1); x != y {
			t.Fatalf("draw %d: %v != %v", i, x, y)
		}
	}
}

func TestState_StringAndParse(t *testing.T) {
	for _, s := range []State{Searching, Alerted, Chasing} {
		got, ok := ParseState(s.String())
		if !ok || got != s {
			t.Fatalf("round trip %s -> %s %v", s, got, ok)
		}
	}
	if _, ok := ParseState("IDLE"); ok {
		t.Fatalf("unknown state parsed")
	}
	if State(9).Valid() {
		t.Fatalf("out of range state is valid")
	}
}
