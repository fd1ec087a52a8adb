package pursuit

import (
	"horde.ai/internal/sim/logic/flocking"
	"horde.ai/internal/sim/logic/perception"
)

// update runs one tick for the hunter: freeze countdown, senses, state
// machine, cue timers, then the flocking nudge.
func (a *Agent) update(c *tickCtx, prey []Prey, occ perception.Occluder) {
	a.spotted = false
	a.lost = false

	a.tickFreeze(c.dt)

	eye := perception.Observer{Pos: a.nav.Position(), Forward: a.nav.Forward()}
	c.seen, c.found = a.dir.sense.Sense(eye, prey, occ)

	a.step(c)
	a.tickCues(c.dt)
	a.applyFlocking(c.dt)
}

// AlertTo moves a Searching hunter to Alerted with pos as the last known
// target position. It reports whether the alert was taken; hunters that are
// not Searching, or have already handled seq, ignore it.
func (a *Agent) AlertTo(pos Vec3, seq uint64) bool {
	if a.rec.Disabled || a.nav == nil || a.rec.State != Searching {
		return false
	}
	if seq != 0 && seq <= a.rec.AlertSeq {
		return false
	}
	if seq != 0 {
		a.rec.AlertSeq = seq
	}
	a.rec.LastKnown = pos
	a.rec.HasLastKnown = true
	a.transition(Transition{To: Alerted, Reason: ReasonAlerted}, nil)
	a.dir.emit(Event{Type: EventAlerted, HunterID: a.rec.ID, Pos: posPtr(pos), Seq: seq})
	a.cue(CueAlertResponse)
	return true
}

// sampleVelocity refreshes the velocity estimate read by peers' flocking.
func (a *Agent) sampleVelocity() {
	if a.nav == nil || !a.nav.HasActivePath() {
		return
	}
	v := a.nav.CurrentVelocity()
	if v.Len() > a.dir.cfg.VelocityMinSpeed {
		a.rec.Velocity = v
	}
}

func (a *Agent) boid() flocking.Boid {
	return flocking.Boid{ID: a.rec.ID, Pos: a.nav.Position(), Vel: a.rec.Velocity}
}

// applyFlocking perturbs the current destination by the flocking force.
// Small forces and idle navigators are left alone.
func (a *Agent) applyFlocking(dt float64) {
	self, ok := a.dir.snapshotOf(a.rec.ID)
	if !ok {
		return
	}
	eng := a.dir.flock
	others := a.dir.neighbours(self.Pos, eng.Config().QueryRadius())
	force := eng.Force(self, a.rec.Speed, others, a.dir.snapshotLen())
	if !eng.ShouldApply(force, a.nav.HasActivePath()) {
		return
	}
	dest := flocking.Perturb(a.nav.Destination(), force, dt)
	if p, ok := a.nav.SampleNearestNavigablePoint(dest, eng.Config().SnapRadius); ok {
		a.nav.SetDestination(p)
	}
}
