package arena

import (
	"horde.ai/internal/sim/logic/vecmath"
)

const (
	arriveDistance = 0.1
	// stuckAfter drops a path that has made no progress for this many seconds.
	stuckAfter = 1.0
)

// NavAgent is a straight-line path follower that slides along obstacle faces.
// It implements pursuit.Navigator.
type NavAgent struct {
	id    string
	arena *Arena

	pos     Vec3
	fwd     Vec3
	dest    Vec3
	hasDest bool
	vel     Vec3
	speed   float64
	stuck   float64
}

// NavState is the serialisable form of a NavAgent.
type NavState struct {
	ID      string  `json:"id"`
	Pos     Vec3    `json:"pos"`
	Fwd     Vec3    `json:"fwd"`
	Dest    Vec3    `json:"dest"`
	HasDest bool    `json:"has_dest"`
	Vel     Vec3    `json:"vel"`
	Speed   float64 `json:"speed"`
	Stuck   float64 `json:"stuck"`
}

func NewNavAgent(id string, a *Arena, pos Vec3) *NavAgent {
	return &NavAgent{id: id, arena: a, pos: pos.Flat(), fwd: vecmath.Forward}
}

func RestoreNavAgent(a *Arena, st NavState) *NavAgent {
	fwd := st.Fwd
	if fwd.IsZero() {
		fwd = vecmath.Forward
	}
	return &NavAgent{
		id:      st.ID,
		arena:   a,
		pos:     st.Pos,
		fwd:     fwd,
		dest:    st.Dest,
		hasDest: st.HasDest,
		vel:     st.Vel,
		speed:   st.Speed,
		stuck:   st.Stuck,
	}
}

func (n *NavAgent) State() NavState {
	return NavState{
		ID:      n.id,
		Pos:     n.pos,
		Fwd:     n.fwd,
		Dest:    n.dest,
		HasDest: n.hasDest,
		Vel:     n.vel,
		Speed:   n.speed,
		Stuck:   n.stuck,
	}
}

func (n *NavAgent) ID() string            { return n.id }
func (n *NavAgent) Position() Vec3        { return n.pos }
func (n *NavAgent) Forward() Vec3         { return n.fwd }
func (n *NavAgent) Destination() Vec3     { return n.dest }
func (n *NavAgent) HasActivePath() bool   { return n.hasDest }
func (n *NavAgent) CurrentVelocity() Vec3 { return n.vel }
func (n *NavAgent) SetSpeed(s float64)    { n.speed = s }

func (n *NavAgent) SetDestination(p Vec3) {
	n.dest = p.Flat()
	n.hasDest = true
	n.stuck = 0
}

func (n *NavAgent) RemainingDistance() float64 {
	if !n.hasDest {
		return 0
	}
	return vecmath.Dist(n.pos, n.dest)
}

func (n *NavAgent) SampleNearestNavigablePoint(p Vec3, maxRadius float64) (Vec3, bool) {
	return n.arena.SampleNavigable(p, maxRadius)
}

// Step integrates dt seconds of movement toward the destination.
func (n *NavAgent) Step(dt float64) {
	if !n.hasDest || dt <= 0 {
		n.vel = vecmath.Zero
		return
	}
	to := n.dest.Sub(n.pos).Flat()
	rem := to.Len()
	if rem <= arriveDistance {
		n.hasDest = false
		n.vel = vecmath.Zero
		return
	}
	stepLen := n.speed * dt
	if stepLen > rem {
		stepLen = rem
	}
	next := n.arena.slide(n.pos, to.Scale(stepLen/rem))
	delta := next.Sub(n.pos)
	if delta.LenSq() < 1e-12 {
		n.vel = vecmath.Zero
		n.stuck += dt
		if n.stuck >= stuckAfter {
			n.hasDest = false
			n.stuck = 0
		}
		return
	}
	n.stuck = 0
	n.fwd = delta.Normalize()
	n.vel = delta.Scale(1 / dt)
	n.pos = next
}

// slide moves from p by move, falling back to single-axis moves when the
// full move would enter an obstacle.
func (a *Arena) slide(p, move Vec3) Vec3 {
	for _, m := range []Vec3{move, {X: move.X}, {Z: move.Z}} {
		if m.IsZero() {
			continue
		}
		q := p.Add(m)
		if !a.walkBlocked(q) {
			return q
		}
	}
	return p
}

func (a *Arena) walkBlocked(p Vec3) bool {
	lim := a.half - wallMargin/2
	if p.X < -lim || p.X > lim || p.Z < -lim || p.Z > lim {
		return true
	}
	return a.obstacleAt(p, wallMargin/2) != nil
}
