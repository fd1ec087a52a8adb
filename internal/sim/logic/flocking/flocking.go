package flocking

import "horde.ai/internal/sim/logic/vecmath"

type Vec3 = vecmath.Vec3

// Boid is one roster member as read at the start of a tick.
type Boid struct {
	ID  string
	Pos Vec3
	Vel Vec3
}

type Config struct {
	SeparationRadius float64
	AlignmentRadius  float64
	CohesionRadius   float64
	Weight           float64

	// MinForce gates destination perturbation; smaller corrections are ignored.
	MinForce float64
	// SnapRadius bounds the navigable-point search for a perturbed destination.
	SnapRadius float64
}

func DefaultConfig() Config {
	return Config{
		SeparationRadius: 2,
		AlignmentRadius:  5,
		CohesionRadius:   5,
		Weight:           0.5,
		MinForce:         0.1,
		SnapRadius:       5,
	}
}

// QueryRadius is the largest neighbourhood any rule reads.
func (c Config) QueryRadius() float64 {
	r := c.SeparationRadius
	if c.AlignmentRadius > r {
		r = c.AlignmentRadius
	}
	if c.CohesionRadius > r {
		r = c.CohesionRadius
	}
	return r
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine { return &Engine{cfg: cfg} }

func (e *Engine) Config() Config { return e.cfg }

// Force blends separation, alignment and cohesion. rosterSize is the live
// roster count; with one member or fewer the force is zero. others may contain
// self (matched by ID) and is read in the given order.
func (e *Engine) Force(self Boid, speed float64, others []Boid, rosterSize int) Vec3 {
	if rosterSize <= 1 {
		return vecmath.Zero
	}
	sep := e.Separation(self, speed, others)
	ali := e.Alignment(self, speed, others)
	coh := e.Cohesion(self, speed, others)
	return sep.Add(ali).Add(coh).Scale(e.cfg.Weight)
}

func (e *Engine) Separation(self Boid, speed float64, others []Boid) Vec3 {
	var steer Vec3
	count := 0
	for _, o := range others {
		if o.ID == self.ID {
			continue
		}
		d := vecmath.Dist(self.Pos, o.Pos)
		if d < e.cfg.SeparationRadius && d > 0 {
			steer = steer.Add(self.Pos.Sub(o.Pos).Normalize().Scale(1 / d))
			count++
		}
	}
	if count == 0 {
		return vecmath.Zero
	}
	return steer.Scale(1 / float64(count)).WithLen(speed)
}

func (e *Engine) Alignment(self Boid, speed float64, others []Boid) Vec3 {
	var avg Vec3
	count := 0
	for _, o := range others {
		if o.ID == self.ID {
			continue
		}
		if vecmath.Dist(self.Pos, o.Pos) < e.cfg.AlignmentRadius {
			avg = avg.Add(o.Vel)
			count++
		}
	}
	if count == 0 {
		return vecmath.Zero
	}
	avg = avg.Scale(1 / float64(count)).WithLen(speed)
	return avg.Sub(self.Vel)
}

func (e *Engine) Cohesion(self Boid, speed float64, others []Boid) Vec3 {
	var center Vec3
	count := 0
	for _, o := range others {
		if o.ID == self.ID {
			continue
		}
		if vecmath.Dist(self.Pos, o.Pos) < e.cfg.CohesionRadius {
			center = center.Add(o.Pos)
			count++
		}
	}
	if count == 0 {
		return vecmath.Zero
	}
	center = center.Scale(1 / float64(count))
	desired := center.Sub(self.Pos).WithLen(speed)
	return desired.Sub(self.Vel)
}

// Perturb nudges a navigation destination by force over dt.
func Perturb(dest, force Vec3, dt float64) Vec3 {
	return dest.Add(force.Scale(dt))
}

// ShouldApply reports whether a force is large enough to re-target navigation.
func (e *Engine) ShouldApply(force Vec3, hasPath bool) bool {
	return hasPath && force.Len() > e.cfg.MinForce
}
