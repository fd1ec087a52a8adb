package pursuit

import (
	"testing"

	"horde.ai/internal/sim/logic/vecmath"
)

const dt = 0.1

func TestSearching_SightTransitionsToChasing(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	nav := newFakeNav(vecmath.Zero)
	h := mustSpawn(t, d, "H1", nav)
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))

	evs := d.Tick(1, dt, preyList(prey), nil)
	if h.CurrentState() != Chasing {
		t.Fatalf("state=%s want CHASING", h.CurrentState())
	}
	if pos, ok := h.LastKnownTarget(); !ok || pos != prey.pos {
		t.Fatalf("last known=%+v ok=%v", pos, ok)
	}
	if !h.JustSpottedTarget() {
		t.Fatalf("expected spotted signal")
	}
	if h.TargetID() != "P1" {
		t.Fatalf("target=%q", h.TargetID())
	}
	if nav.speed != d.Config().AlertedSpeed {
		t.Fatalf("speed=%v want %v", nav.speed, d.Config().AlertedSpeed)
	}
	if got := countCues(evs, CueAlertCry); got != 1 {
		t.Fatalf("alert cries=%d want 1", got)
	}
	if got := countEvents(evs, EventBroadcast); got != 1 {
		t.Fatalf("broadcasts=%d want 1", got)
	}

	evs = d.Tick(2, dt, preyList(prey), nil)
	if h.JustSpottedTarget() {
		t.Fatalf("spotted signal must be one-shot")
	}
	if got := countEvents(evs, EventBroadcast); got != 0 {
		t.Fatalf("broadcast repeated while chasing: %d", got)
	}
}

func TestSearching_HearingThroughWall(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	h := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	loud := newFakePrey("P1", vecmath.V(0, 0, 35))
	loud.noise = 1

	d.Tick(1, dt, preyList(loud), wall{})
	if h.CurrentState() != Chasing {
		t.Fatalf("state=%s want CHASING via hearing", h.CurrentState())
	}
}

func TestSearching_QuietBlockedPreyIsMissed(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	h := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	quiet := newFakePrey("P1", vecmath.V(0, 0, 20))

	d.Tick(1, dt, preyList(quiet), wall{})
	if h.CurrentState() != Searching {
		t.Fatalf("state=%s want SEARCHING", h.CurrentState())
	}
	d.Tick(2, dt, nil, nil)
	if h.CurrentState() != Searching {
		t.Fatalf("empty prey set changed state to %s", h.CurrentState())
	}
}

func TestChasing_LosesTargetBeyondLoseRadius(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDirectory(cfg, 1, nil)
	nav := newFakeNav(vecmath.Zero)
	h := mustSpawn(t, d, "H1", nav)
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))
	d.Tick(1, dt, preyList(prey), nil)
	if h.CurrentState() != Chasing {
		t.Fatalf("setup: state=%s", h.CurrentState())
	}

	prey.detectable = false
	nav.pos = vecmath.V(0, 0, 20-(cfg.LoseRadius-1))
	d.Tick(2, dt, preyList(prey), nil)
	if h.CurrentState() != Chasing {
		t.Fatalf("state=%s, still inside lose radius", h.CurrentState())
	}
	if nav.dest != prey.pos {
		t.Fatalf("should head to last known position, dest=%+v", nav.dest)
	}

	nav.pos = vecmath.V(0, 0, 20-(cfg.LoseRadius+1))
	evs := d.Tick(3, dt, preyList(prey), nil)
	if h.CurrentState() != Searching {
		t.Fatalf("state=%s want SEARCHING", h.CurrentState())
	}
	if !h.JustLostTarget() {
		t.Fatalf("expected lost signal")
	}
	if h.TargetID() != "" {
		t.Fatalf("target should be cleared, got %q", h.TargetID())
	}
	if countEvents(evs, EventLost) != 1 {
		t.Fatalf("expected one LOST event")
	}
	if nav.speed != cfg.NormalSpeed {
		t.Fatalf("speed=%v want %v", nav.speed, cfg.NormalSpeed)
	}

	d.Tick(4, dt, preyList(prey), nil)
	if h.JustLostTarget() {
		t.Fatalf("lost signal must be one-shot")
	}
}

func TestChasing_SecondSightingDoesNotCryAgain(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDirectory(cfg, 1, nil)
	nav := newFakeNav(vecmath.Zero)
	h := mustSpawn(t, d, "H1", nav)
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))
	d.Tick(1, dt, preyList(prey), nil)

	prey.detectable = false
	nav.pos = vecmath.V(0, 0, -40)
	d.Tick(2, dt, preyList(prey), nil)
	if h.CurrentState() != Searching {
		t.Fatalf("setup: state=%s", h.CurrentState())
	}

	nav.pos = vecmath.Zero
	prey.detectable = true
	evs := d.Tick(3, dt, preyList(prey), nil)
	if h.CurrentState() != Chasing {
		t.Fatalf("state=%s want CHASING", h.CurrentState())
	}
	if countCues(evs, CueAlertCry) != 0 {
		t.Fatalf("alert cry must only play on the first sighting")
	}
	if countEvents(evs, EventBroadcast) != 1 {
		t.Fatalf("every new sighting broadcasts")
	}
}

func TestAlerted_InvestigationExhausted(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDirectory(cfg, 1, nil)
	nav := newFakeNav(vecmath.Zero)
	h := mustSpawn(t, d, "H1", nav)

	if !h.AlertTo(vecmath.V(10, 0, 0), 0) {
		t.Fatalf("searching hunter should accept alert")
	}
	if h.CurrentState() != Alerted {
		t.Fatalf("state=%s want ALERTED", h.CurrentState())
	}
	if nav.speed != cfg.AlertedSpeed {
		t.Fatalf("speed=%v want alerted", nav.speed)
	}

	nav.pos = vecmath.V(5, 0, 0)
	d.Tick(1, dt, nil, nil)
	if h.CurrentState() != Alerted || nav.dest != vecmath.V(10, 0, 0) {
		t.Fatalf("state=%s dest=%+v", h.CurrentState(), nav.dest)
	}

	nav.pos = vecmath.V(10-cfg.InvestigateRadius+0.5, 0, 0)
	d.Tick(2, dt, nil, nil)
	if h.CurrentState() != Searching {
		t.Fatalf("state=%s want SEARCHING", h.CurrentState())
	}
	if h.JustLostTarget() {
		t.Fatalf("exhausted investigation is not a lost chase")
	}
	if nav.speed != cfg.NormalSpeed {
		t.Fatalf("speed=%v want normal", nav.speed)
	}
}

func TestAlerted_ReacquireDoesNotBroadcast(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	h := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	other := mustSpawn(t, d, "H2", newFakeNav(vecmath.V(200, 0, 0)))

	h.AlertTo(vecmath.V(0, 0, 25), 0)
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))
	evs := d.Tick(1, dt, preyList(prey), nil)
	if h.CurrentState() != Chasing {
		t.Fatalf("state=%s want CHASING", h.CurrentState())
	}
	if countEvents(evs, EventBroadcast) != 0 {
		t.Fatalf("Alerted->Chasing must not broadcast")
	}
	if other.CurrentState() != Searching {
		t.Fatalf("peer state=%s want SEARCHING", other.CurrentState())
	}
}

func TestAlertTo_IgnoredUnlessSearching(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	h := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))
	if !h.AlertTo(vecmath.V(5, 0, 5), 7) {
		t.Fatalf("first alert should be taken")
	}
	if h.AlertTo(vecmath.V(9, 0, 9), 8) {
		t.Fatalf("alerted hunter must ignore further alerts")
	}
	if pos, _ := h.LastKnownTarget(); pos != vecmath.V(5, 0, 5) {
		t.Fatalf("last known overwritten: %+v", pos)
	}
}

func TestFreeze_MidChaseRestoresSpeed(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDirectory(cfg, 1, nil)
	nav := newFakeNav(vecmath.Zero)
	h := mustSpawn(t, d, "H1", nav)
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))
	d.Tick(0, dt, preyList(prey), nil)
	if h.CurrentState() != Chasing {
		t.Fatalf("setup: state=%s", h.CurrentState())
	}

	if n := d.FreezeAll(5); n != 1 {
		t.Fatalf("froze %d hunters", n)
	}
	if !h.Frozen() || nav.speed != cfg.FrozenSpeed {
		t.Fatalf("frozen=%v speed=%v", h.Frozen(), nav.speed)
	}

	tick := uint64(1)
	for ; tick <= 49; tick++ {
		d.Tick(tick, dt, preyList(prey), nil)
		if h.CurrentState() != Chasing {
			t.Fatalf("tick %d: freeze changed state to %s", tick, h.CurrentState())
		}
		if nav.speed != cfg.FrozenSpeed {
			t.Fatalf("tick %d: speed=%v want frozen", tick, nav.speed)
		}
	}
	var thawed int
	for ; tick <= 51; tick++ {
		thawed += countEvents(d.Tick(tick, dt, preyList(prey), nil), EventThawed)
	}
	if h.Frozen() {
		t.Fatalf("still frozen after 5.1s, left=%v", h.FrozenRemaining())
	}
	if thawed != 1 {
		t.Fatalf("thaw events=%d want 1", thawed)
	}
	if h.CurrentState() != Chasing || nav.speed != cfg.AlertedSpeed {
		t.Fatalf("state=%s speed=%v", h.CurrentState(), nav.speed)
	}
}

func TestCues_IdleAndChaseTimers(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDirectory(cfg, 1, nil)
	h := mustSpawn(t, d, "H1", newFakeNav(vecmath.Zero))

	h.rec.IdleCue = 0.05
	evs := d.Tick(1, dt, nil, nil)
	if countCues(evs, CueIdleGroan) != 1 {
		t.Fatalf("expected idle groan, events=%+v", evs)
	}
	if h.rec.IdleCue < cfg.IdleCueMin || h.rec.IdleCue > cfg.IdleCueMax {
		t.Fatalf("idle cue rearmed to %v", h.rec.IdleCue)
	}

	prey := newFakePrey("P1", vecmath.V(0, 0, 20))
	d.Tick(2, dt, preyList(prey), nil)
	h.rec.ChaseCue = 0.05
	evs = d.Tick(3, dt, preyList(prey), nil)
	if countCues(evs, CueChaseGroan) != 1 {
		t.Fatalf("expected chase groan")
	}
	if countCues(evs, CueIdleGroan) != 0 {
		t.Fatalf("idle groan while chasing")
	}
}

func TestChasing_LeadsMovingTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlankChance = 0
	d := NewDirectory(cfg, 1, nil)
	nav := newFakeNav(vecmath.Zero)
	mustSpawn(t, d, "H1", nav)
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))
	prey.vel = vecmath.V(2, 0, 0)
	prey.hasVel = true

	d.Tick(1, dt, preyList(prey), nil)
	d.Tick(2, dt, preyList(prey), nil)
	want := vecmath.V(2*cfg.LeadTime, 0, 20)
	if !near(nav.dest, want, 1e-9) {
		t.Fatalf("dest=%+v want %+v", nav.dest, want)
	}
}

func TestChasing_FlankSlotKeptWhenSamplingFails(t *testing.T) {
	d := NewDirectory(DefaultConfig(), 1, nil)
	nav := newFakeNav(vecmath.Zero)
	h := mustSpawn(t, d, "H1", nav)
	prey := newFakePrey("P1", vecmath.V(0, 0, 20))

	d.Tick(1, dt, preyList(prey), nil)
	d.Tick(2, dt, preyList(prey), nil)
	slot, ok := h.FlankSlot()
	if !ok || !near(slot, vecmath.V(-8, 0, 20), 1e-9) {
		t.Fatalf("slot=%+v ok=%v", slot, ok)
	}

	nav.sampleFail = true
	prey.pos = vecmath.V(5, 0, 20)
	for i := uint64(3); i < 28; i++ {
		d.Tick(i, dt, preyList(prey), nil)
	}
	if got, _ := h.FlankSlot(); got != slot {
		t.Fatalf("slot moved to %+v despite sampling failure", got)
	}

	nav.sampleFail = false
	for i := uint64(28); i < 53; i++ {
		d.Tick(i, dt, preyList(prey), nil)
	}
	if got, _ := h.FlankSlot(); got == slot {
		t.Fatalf("slot not recomputed after sampling recovered")
	}
}
