package pursuit

import (
	"horde.ai/internal/sim/logic/perception"
	"horde.ai/internal/sim/logic/vecmath"
)

// Transition is returned by a state's tick to request a state change.
type Transition struct {
	To     State
	Reason string
}

const (
	ReasonSpotted    = "spotted"
	ReasonLost       = "lost"
	ReasonAlerted    = "alerted"
	ReasonExhausted  = "investigation_exhausted"
	ReasonReacquired = "reacquired"
)

// tickCtx is the per-hunter input of one state machine step.
type tickCtx struct {
	tick  uint64
	dt    float64
	seen  perception.Result
	found bool
}

type stateDef struct {
	enter func(a *Agent, from State, c *tickCtx)
	tick  func(a *Agent, c *tickCtx) (Transition, bool)
	exit  func(a *Agent, to State, c *tickCtx)
}

var stateTable [Chasing + 1]stateDef

func init() {
	stateTable = [...]stateDef{
		Searching: {enter: enterSearching, tick: tickSearching},
		Alerted:   {enter: enterAlerted, tick: tickAlerted},
		Chasing:   {enter: enterChasing, tick: tickChasing, exit: exitChasing},
	}
}

// step runs the current state's tick and applies at most one transition.
func (a *Agent) step(c *tickCtx) {
	def := stateTable[a.rec.State]
	tr, ok := def.tick(a, c)
	if !ok {
		return
	}
	a.transition(tr, c)
}

func (a *Agent) transition(tr Transition, c *tickCtx) {
	from := a.rec.State
	if !tr.To.Valid() || tr.To == from {
		return
	}
	if exit := stateTable[from].exit; exit != nil {
		exit(a, tr.To, c)
	}
	a.rec.State = tr.To
	a.applySpeed()
	a.dir.emit(Event{
		Type:     EventState,
		HunterID: a.rec.ID,
		State:    tr.To.String(),
		Prev:     from.String(),
		Reason:   tr.Reason,
	})
	if enter := stateTable[tr.To].enter; enter != nil {
		enter(a, from, c)
	}
}

func enterSearching(a *Agent, from State, c *tickCtx) {
	if from == Chasing {
		a.lost = true
		a.dir.emit(Event{Type: EventLost, HunterID: a.rec.ID, Pos: posPtr(a.rec.LastKnown)})
	}
	a.pickSearch()
}

func tickSearching(a *Agent, c *tickCtx) (Transition, bool) {
	if c.found {
		return Transition{To: Chasing, Reason: ReasonSpotted}, true
	}
	if !a.nav.HasActivePath() || a.nav.RemainingDistance() < a.dir.cfg.ArriveDistance {
		a.rec.SearchWait -= c.dt
		if a.rec.SearchWait <= 0 {
			a.pickSearch()
		}
	}
	return Transition{}, false
}

// pickSearch re-targets the wander. On a sampling failure the wait stays
// expired so the next tick retries.
func (a *Agent) pickSearch() {
	p, ok := a.dir.SearchTarget(a)
	if !ok {
		return
	}
	a.nav.SetDestination(p)
	a.rec.SearchWait = a.dir.cfg.SearchWait
}

func enterAlerted(a *Agent, from State, c *tickCtx) {
	if a.rec.HasLastKnown {
		a.nav.SetDestination(a.rec.LastKnown)
	}
}

func tickAlerted(a *Agent, c *tickCtx) (Transition, bool) {
	if c.found {
		return Transition{To: Chasing, Reason: ReasonReacquired}, true
	}
	if vecmath.Dist(a.nav.Position(), a.rec.LastKnown) < a.dir.cfg.InvestigateRadius {
		return Transition{To: Searching, Reason: ReasonExhausted}, true
	}
	a.nav.SetDestination(a.rec.LastKnown)
	return Transition{}, false
}

func enterChasing(a *Agent, from State, c *tickCtx) {
	if c == nil || !c.found {
		return
	}
	a.observe(c.seen)
	a.rec.FlankTimer = 0
	a.rec.HasFlank = false
	a.spotted = true
	a.dir.emit(Event{Type: EventSpotted, HunterID: a.rec.ID, TargetID: a.rec.TargetID, Pos: posPtr(c.seen.Pos)})
	a.nav.SetDestination(c.seen.Pos)

	if !a.rec.EverPerceived {
		a.rec.EverPerceived = true
		a.cue(CueAlertCry)
	}
	if from == Searching {
		a.dir.Broadcast(AlertEvent{From: a.rec.ID, Pos: c.seen.Pos})
	}
}

func tickChasing(a *Agent, c *tickCtx) (Transition, bool) {
	cfg := &a.dir.cfg
	self := a.nav.Position()
	if !c.found {
		if vecmath.Dist(self, a.rec.LastKnown) > cfg.LoseRadius {
			return Transition{To: Searching, Reason: ReasonLost}, true
		}
		a.nav.SetDestination(a.rec.LastKnown)
		return Transition{}, false
	}

	a.observe(c.seen)
	a.rec.FlankTimer -= c.dt
	if a.rec.FlankTimer <= 0 {
		if slot, ok := a.dir.FlankSlot(a, c.seen.Pos); ok {
			a.rec.FlankSlot = slot
			a.rec.HasFlank = true
		}
		a.rec.FlankTimer = cfg.FlankInterval
	}

	d := vecmath.Dist(self, c.seen.Pos)
	if d > cfg.FlankMinDistance && a.rng.Float64() < cfg.FlankChance && a.rec.HasFlank {
		a.nav.SetDestination(a.rec.FlankSlot)
	} else {
		a.nav.SetDestination(a.predict(c.seen))
	}
	return Transition{}, false
}

func exitChasing(a *Agent, to State, c *tickCtx) {
	a.rec.TargetID = ""
	a.rec.HasFlank = false
	a.rec.FlankTimer = 0
}

func (a *Agent) observe(r perception.Result) {
	a.rec.LastKnown = r.Pos
	a.rec.HasLastKnown = true
	if r.Target != nil {
		a.rec.TargetID = r.Target.ID()
	}
}

// predict leads a moving target by LeadTime seconds.
func (a *Agent) predict(r perception.Result) Vec3 {
	cfg := &a.dir.cfg
	if r.HasVel && r.Velocity.Len() > cfg.LeadMinSpeed {
		return r.Pos.Add(r.Velocity.Scale(cfg.LeadTime))
	}
	return r.Pos
}
