package pursuit

import (
	"testing"

	"horde.ai/internal/sim/logic/perception"
	"horde.ai/internal/sim/logic/vecmath"
)

type fakeNav struct {
	pos     Vec3
	fwd     Vec3
	dest    Vec3
	hasDest bool
	vel     Vec3
	speed   float64

	sampleFail bool
	setCalls   int
}

func newFakeNav(pos Vec3) *fakeNav {
	return &fakeNav{pos: pos, fwd: vecmath.Forward}
}

func (n *fakeNav) Position() Vec3 { return n.pos }
func (n *fakeNav) Forward() Vec3  { return n.fwd }

func (n *fakeNav) SetDestination(p Vec3) {
	n.dest = p
	n.hasDest = true
	n.setCalls++
}

func (n *fakeNav) Destination() Vec3 { return n.dest }

func (n *fakeNav) HasActivePath() bool {
	return n.hasDest && vecmath.Dist(n.pos, n.dest) > 0.01
}

func (n *fakeNav) RemainingDistance() float64 {
	if !n.hasDest {
		return 0
	}
	return vecmath.Dist(n.pos, n.dest)
}

func (n *fakeNav) CurrentVelocity() Vec3 { return n.vel }

func (n *fakeNav) SampleNearestNavigablePoint(p Vec3, maxRadius float64) (Vec3, bool) {
	if n.sampleFail {
		return Vec3{}, false
	}
	return p, true
}

func (n *fakeNav) SetSpeed(s float64) { n.speed = s }

type fakePrey struct {
	id         string
	pos        Vec3
	vel        Vec3
	hasVel     bool
	noise      float64
	detectable bool
}

func newFakePrey(id string, pos Vec3) *fakePrey {
	return &fakePrey{id: id, pos: pos, detectable: true}
}

func (p *fakePrey) ID() string             { return p.id }
func (p *fakePrey) Position() Vec3         { return p.pos }
func (p *fakePrey) Velocity() (Vec3, bool) { return p.vel, p.hasVel }
func (p *fakePrey) NoiseLevel() float64    { return p.noise }
func (p *fakePrey) IsDetectable() bool     { return p.detectable }

// wall blocks every ray.
type wall struct{}

func (wall) Raycast(origin, dir Vec3, maxDist float64) (perception.Hit, bool) {
	return perception.Hit{ID: "wall", Root: "wall", Dist: 0.5}, true
}

func preyList(ps ...*fakePrey) []Prey {
	out := make([]Prey, 0, len(ps))
	for _, p := range ps {
		out = append(out, p)
	}
	return out
}

func countEvents(evs []Event, typ EventType) int {
	n := 0
	for _, ev := range evs {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func countCues(evs []Event, cue Cue) int {
	n := 0
	for _, ev := range evs {
		if ev.Type == EventCue && ev.Cue == cue {
			n++
		}
	}
	return n
}

func mustSpawn(t *testing.T, d *Directory, id string, nav Navigator) *Agent {
	t.Helper()
	a, err := d.Spawn(id, nav)
	if err != nil {
		t.Fatalf("spawn %s: %v", id, err)
	}
	return a
}

func near(a, b Vec3, eps float64) bool { return vecmath.Dist(a, b) <= eps }
