package pursuit

import (
	"math/rand/v2"
)

// Hunter is the persistent record of one pursuing agent. Every countdown
// lives here so a snapshot can pause and resume the agent exactly.
type Hunter struct {
	ID  string `json:"id"`
	Num uint64 `json:"num"`

	State         State  `json:"state"`
	LastKnown     Vec3   `json:"last_known"`
	HasLastKnown  bool   `json:"has_last_known"`
	EverPerceived bool   `json:"ever_perceived"`
	TargetID      string `json:"target_id,omitempty"`

	Velocity Vec3    `json:"velocity"`
	Speed    float64 `json:"speed"`

	FrozenLeft float64 `json:"frozen_left"`
	SearchWait float64 `json:"search_wait"`
	FlankTimer float64 `json:"flank_timer"`
	FlankSlot  Vec3    `json:"flank_slot"`
	HasFlank   bool    `json:"has_flank"`
	IdleCue    float64 `json:"idle_cue"`
	ChaseCue   float64 `json:"chase_cue"`

	AlertSeq uint64 `json:"alert_seq"`
	Disabled bool   `json:"disabled,omitempty"`

	// RNG is the marshalled PCG state of the hunter's private random source.
	RNG []byte `json:"rng,omitempty"`
}

// Agent drives one hunter: it owns the record, the navigator binding and the
// hunter's private random source.
type Agent struct {
	dir *Directory
	nav Navigator
	pcg *rand.PCG
	rng *rand.Rand
	rec Hunter

	spotted bool
	lost    bool
}

func newAgent(dir *Directory, rec Hunter, nav Navigator) *Agent {
	pcg := rand.NewPCG(uint64(dir.seed), rec.Num)
	return &Agent{
		dir: dir,
		nav: nav,
		pcg: pcg,
		rng: rand.New(pcg),
		rec: rec,
	}
}

func (a *Agent) ID() string               { return a.rec.ID }
func (a *Agent) Navigator() Navigator     { return a.nav }
func (a *Agent) CurrentState() State      { return a.rec.State }
func (a *Agent) Speed() float64           { return a.rec.Speed }
func (a *Agent) Velocity() Vec3           { return a.rec.Velocity }
func (a *Agent) Frozen() bool             { return a.rec.FrozenLeft > 0 }
func (a *Agent) FrozenRemaining() float64 { return a.rec.FrozenLeft }
func (a *Agent) Disabled() bool           { return a.rec.Disabled }
func (a *Agent) TargetID() string         { return a.rec.TargetID }

// JustSpottedTarget is true for the tick in which the hunter entered Chasing.
func (a *Agent) JustSpottedTarget() bool { return a.spotted }

// JustLostTarget is true for the tick in which the hunter gave up a chase.
func (a *Agent) JustLostTarget() bool { return a.lost }

func (a *Agent) LastKnownTarget() (Vec3, bool) {
	return a.rec.LastKnown, a.rec.HasLastKnown
}

func (a *Agent) FlankSlot() (Vec3, bool) { return a.rec.FlankSlot, a.rec.HasFlank }

// Record returns a copy of the hunter record including the random source state.
func (a *Agent) Record() Hunter {
	out := a.rec
	if b, err := a.pcg.MarshalBinary(); err == nil {
		out.RNG = b
	}
	return out
}

func (a *Agent) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + a.rng.Float64()*(hi-lo)
}

// applySpeed enforces frozen > elevated (Chasing, Alerted) > base.
func (a *Agent) applySpeed() {
	cfg := &a.dir.cfg
	speed := cfg.NormalSpeed
	switch {
	case a.rec.FrozenLeft > 0:
		speed = cfg.FrozenSpeed
	case a.rec.State == Chasing || a.rec.State == Alerted:
		speed = cfg.AlertedSpeed
	}
	a.rec.Speed = speed
	if a.nav != nil {
		a.nav.SetSpeed(speed)
	}
}

// OnFrozen forces the reduced speed for duration seconds without touching
// the state machine. A new freeze replaces the remaining time.
func (a *Agent) OnFrozen(duration float64) {
	if duration <= 0 || a.rec.Disabled {
		return
	}
	a.rec.FrozenLeft = duration
	a.applySpeed()
	a.dir.emit(Event{Type: EventFrozen, HunterID: a.rec.ID, State: a.rec.State.String(), Duration: duration})
}

func (a *Agent) tickFreeze(dt float64) {
	if a.rec.FrozenLeft <= 0 {
		return
	}
	a.rec.FrozenLeft -= dt
	if a.rec.FrozenLeft > 0 {
		return
	}
	a.rec.FrozenLeft = 0
	a.applySpeed()
	a.dir.emit(Event{Type: EventThawed, HunterID: a.rec.ID, State: a.rec.State.String()})
}

func (a *Agent) tickCues(dt float64) {
	cfg := &a.dir.cfg
	switch a.rec.State {
	case Searching:
		a.rec.IdleCue -= dt
		if a.rec.IdleCue <= 0 {
			a.cue(CueIdleGroan)
			a.rec.IdleCue = a.uniform(cfg.IdleCueMin, cfg.IdleCueMax)
		}
	case Chasing:
		a.rec.ChaseCue -= dt
		if a.rec.ChaseCue <= 0 {
			a.cue(CueChaseGroan)
			a.rec.ChaseCue = a.uniform(cfg.ChaseCueMin, cfg.ChaseCueMax)
		}
	}
}

func (a *Agent) cue(c Cue) {
	a.dir.emit(Event{Type: EventCue, HunterID: a.rec.ID, Cue: c, State: a.rec.State.String()})
}
