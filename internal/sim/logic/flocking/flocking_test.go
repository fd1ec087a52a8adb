package flocking

import (
	"math"
	"testing"

	"horde.ai/internal/sim/logic/vecmath"
)

func TestForce_SingleMemberIsZero(t *testing.T) {
	e := New(DefaultConfig())
	self := Boid{ID: "H1", Pos: vecmath.Zero, Vel: vecmath.V(1, 0, 0)}
	if f := e.Force(self, 2, []Boid{self}, 1); !f.IsZero() {
		t.Fatalf("force=%+v, want zero", f)
	}
	if f := e.Force(self, 2, nil, 0); !f.IsZero() {
		t.Fatalf("empty roster force=%+v, want zero", f)
	}
}

func TestSeparation_PointsAwayJustInsideRadius(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg)
	const eps = 1e-3
	self := Boid{ID: "H1", Pos: vecmath.Zero}
	other := Boid{ID: "H2", Pos: vecmath.V(cfg.SeparationRadius-eps, 0, 0)}

	s := e.Separation(self, 2, []Boid{self, other})
	if s.IsZero() {
		t.Fatalf("separation should be nonzero")
	}
	if s.X >= 0 {
		t.Fatalf("separation=%+v should point away from +X neighbour", s)
	}
	if math.Abs(s.Len()-2) > 1e-9 {
		t.Fatalf("separation len=%v want speed 2", s.Len())
	}
}

func TestSeparation_IgnoresCoincidentAndFar(t *testing.T) {
	e := New(DefaultConfig())
	self := Boid{ID: "H1", Pos: vecmath.Zero}
	same := Boid{ID: "H2", Pos: vecmath.Zero}
	far := Boid{ID: "H3", Pos: vecmath.V(10, 0, 0)}
	if s := e.Separation(self, 2, []Boid{same, far}); !s.IsZero() {
		t.Fatalf("separation=%+v, want zero", s)
	}
}

func TestAlignment_MatchesNeighbourHeading(t *testing.T) {
	e := New(DefaultConfig())
	self := Boid{ID: "H1", Pos: vecmath.Zero, Vel: vecmath.Zero}
	n := Boid{ID: "H2", Pos: vecmath.V(3, 0, 0), Vel: vecmath.V(0, 0, 4)}
	a := e.Alignment(self, 2, []Boid{n})
	if math.Abs(a.Z-2) > 1e-9 || math.Abs(a.X) > 1e-9 {
		t.Fatalf("alignment=%+v, want (0,0,2)", a)
	}
}

func TestCohesion_SteersTowardCentroid(t *testing.T) {
	e := New(DefaultConfig())
	self := Boid{ID: "H1", Pos: vecmath.Zero}
	a := Boid{ID: "H2", Pos: vecmath.V(4, 0, 1)}
	b := Boid{ID: "H3", Pos: vecmath.V(4, 0, -1)}
	c := e.Cohesion(self, 1, []Boid{a, b})
	if math.Abs(c.X-1) > 1e-9 || math.Abs(c.Z) > 1e-9 {
		t.Fatalf("cohesion=%+v, want (1,0,0)", c)
	}
}

func TestForce_WeightedSum(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg)
	self := Boid{ID: "H1", Pos: vecmath.Zero}
	n := Boid{ID: "H2", Pos: vecmath.V(1, 0, 0), Vel: vecmath.V(1, 0, 0)}
	others := []Boid{self, n}
	want := e.Separation(self, 2, others).
		Add(e.Alignment(self, 2, others)).
		Add(e.Cohesion(self, 2, others)).
		Scale(cfg.Weight)
	got := e.Force(self, 2, others, 2)
	if vecmath.Dist(got, want) > 1e-12 {
		t.Fatalf("force=%+v want %+v", got, want)
	}
}

func TestShouldApply(t *testing.T) {
	e := New(DefaultConfig())
	if e.ShouldApply(vecmath.V(0.05, 0, 0), true) {
		t.Fatalf("tiny force must not be applied")
	}
	if e.ShouldApply(vecmath.V(1, 0, 0), false) {
		t.Fatalf("force without active path must not be applied")
	}
	if !e.ShouldApply(vecmath.V(1, 0, 0), true) {
		t.Fatalf("force should be applied")
	}
	if p := Perturb(vecmath.V(1, 0, 1), vecmath.V(2, 0, 0), 0.5); p != vecmath.V(2, 0, 1) {
		t.Fatalf("perturb=%+v", p)
	}
}
