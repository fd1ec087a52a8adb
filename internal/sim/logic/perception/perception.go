// Package perception decides which target, if any, a hunter notices this tick.
//
// Sight is a vision cone plus a single line-of-sight ray; hearing is a scalar
// radius scaled by the target's noise level. The routines are pure: they read
// collaborators and return a value.
package perception

import (
	"math"

	"horde.ai/internal/sim/logic/vecmath"
)

type Vec3 = vecmath.Vec3

// Target is a prey candidate as seen by the sensory model.
type Target interface {
	ID() string
	Position() Vec3
	// Velocity reports the target's own velocity when known.
	Velocity() (Vec3, bool)
	// NoiseLevel is 0..1; values outside the range are clamped.
	NoiseLevel() float64
	IsDetectable() bool
}

// Hit is the first collider a ray touched.
type Hit struct {
	ID   string  // collider id
	Root string  // owning entity id; a part of a target reports the target's id
	Dist float64 // distance from the ray origin
}

// Occluder answers single-ray line-of-sight queries.
type Occluder interface {
	Raycast(origin, dir Vec3, maxDist float64) (Hit, bool)
}

type Config struct {
	VisionRadius   float64
	VisionAngleDeg float64
	HearingRadius  float64
	NoiseWeight    float64
	EyeHeight      float64
}

func DefaultConfig() Config {
	return Config{
		VisionRadius:   30,
		VisionAngleDeg: 180,
		HearingRadius:  40,
		NoiseWeight:    10,
		EyeHeight:      1,
	}
}

// Observer is the sensing hunter's pose.
type Observer struct {
	Pos     Vec3
	Forward Vec3
}

type Result struct {
	Target   Target
	Pos      Vec3
	Velocity Vec3
	HasVel   bool
	Distance float64
	Score    float64
	Seen     bool
	Heard    bool
}

type System struct {
	cfg Config
}

func New(cfg Config) *System { return &System{cfg: cfg} }

func (s *System) Config() Config { return s.cfg }

// Sense returns the lowest-score perceivable target. Ties keep the earlier target.
func (s *System) Sense(eye Observer, targets []Target, occ Occluder) (Result, bool) {
	var best Result
	found := false
	for _, t := range targets {
		if t == nil || !t.IsDetectable() {
			continue
		}
		pos := t.Position()
		d := vecmath.Dist(eye.Pos, pos)
		noise := clamp01(t.NoiseLevel())

		seen := s.CanSee(eye, t, pos, d, occ)
		heard := s.CanHear(d, noise)
		if !seen && !heard {
			continue
		}
		score := d - noise*s.cfg.NoiseWeight
		if found && score >= best.Score {
			continue
		}
		vel, hasVel := t.Velocity()
		best = Result{
			Target:   t,
			Pos:      pos,
			Velocity: vel,
			HasVel:   hasVel,
			Distance: d,
			Score:    score,
			Seen:     seen,
			Heard:    heard,
		}
		found = true
	}
	return best, found
}

// CanSee applies the vision radius, the half-angle cone and one occlusion ray.
func (s *System) CanSee(eye Observer, t Target, pos Vec3, d float64, occ Occluder) bool {
	if d > s.cfg.VisionRadius {
		return false
	}
	toTarget := pos.Sub(eye.Pos).Normalize()
	if vecmath.AngleDeg(eye.Forward, toTarget) > s.cfg.VisionAngleDeg/2 {
		return false
	}
	if occ == nil {
		return true
	}
	lift := vecmath.Up.Scale(s.cfg.EyeHeight)
	from := eye.Pos.Add(lift)
	to := pos.Add(lift)
	dir := to.Sub(from).Normalize()
	if dir.IsZero() {
		return true
	}
	hit, ok := occ.Raycast(from, dir, d)
	if !ok {
		return true
	}
	return hit.Root == t.ID() || hit.ID == t.ID()
}

func (s *System) CanHear(d, noise float64) bool {
	return d < s.cfg.HearingRadius*noise
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
