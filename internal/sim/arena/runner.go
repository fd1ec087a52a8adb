package arena

import (
	"fmt"
	"math/rand/v2"

	"horde.ai/internal/sim/logic/vecmath"
	"horde.ai/internal/sim/tuning"
)

type Mode uint8

const (
	ModeIdle Mode = iota
	ModeCrouch
	ModeWalk
	ModeSprint
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeCrouch:
		return "CROUCH"
	case ModeWalk:
		return "WALK"
	case ModeSprint:
		return "SPRINT"
	}
	return fmt.Sprintf("MODE(%d)", uint8(m))
}

func ParseMode(s string) (Mode, bool) {
	for m := ModeIdle; m <= ModeSprint; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return ModeIdle, false
}

// Runner is a simulated prey body. It wanders between random waypoints and
// changes gait over time; the gait decides speed and noise.
type Runner struct {
	id    string
	arena *Arena
	cfg   tuning.Prey

	pos         Vec3
	vel         Vec3
	waypoint    Vec3
	hasWaypoint bool
	mode        Mode
	modeLeft    float64
	held        bool
	stamina     float64
	neutralized bool

	pcg *rand.PCG
	rng *rand.Rand
}

// RunnerState is the serialisable form of a Runner.
type RunnerState struct {
	ID          string  `json:"id"`
	Pos         Vec3    `json:"pos"`
	Vel         Vec3    `json:"vel"`
	Waypoint    Vec3    `json:"waypoint"`
	HasWaypoint bool    `json:"has_waypoint"`
	Mode        Mode    `json:"mode"`
	ModeLeft    float64 `json:"mode_left"`
	Held        bool    `json:"held,omitempty"`
	Stamina     float64 `json:"stamina"`
	Neutralized bool    `json:"neutralized,omitempty"`
	RNG         []byte  `json:"rng,omitempty"`
}

func NewRunner(id string, a *Arena, cfg tuning.Prey, pos Vec3, seed, stream uint64) *Runner {
	pcg := rand.NewPCG(seed, stream)
	return &Runner{
		id:      id,
		arena:   a,
		cfg:     cfg,
		pos:     pos.Flat(),
		mode:    ModeWalk,
		stamina: cfg.MaxStamina,
		pcg:     pcg,
		rng:     rand.New(pcg),
	}
}

func RestoreRunner(a *Arena, cfg tuning.Prey, st RunnerState) (*Runner, error) {
	r := NewRunner(st.ID, a, cfg, st.Pos, 0, 0)
	if len(st.RNG) > 0 {
		if err := r.pcg.UnmarshalBinary(st.RNG); err != nil {
			return nil, fmt.Errorf("runner %s: rng: %w", st.ID, err)
		}
	}
	r.vel = st.Vel
	r.waypoint = st.Waypoint
	r.hasWaypoint = st.HasWaypoint
	r.mode = st.Mode
	r.modeLeft = st.ModeLeft
	r.held = st.Held
	r.stamina = st.Stamina
	r.neutralized = st.Neutralized
	return r, nil
}

func (r *Runner) State() RunnerState {
	st := RunnerState{
		ID:          r.id,
		Pos:         r.pos,
		Vel:         r.vel,
		Waypoint:    r.waypoint,
		HasWaypoint: r.hasWaypoint,
		Mode:        r.mode,
		ModeLeft:    r.modeLeft,
		Held:        r.held,
		Stamina:     r.stamina,
		Neutralized: r.neutralized,
	}
	if b, err := r.pcg.MarshalBinary(); err == nil {
		st.RNG = b
	}
	return st
}

func (r *Runner) ID() string             { return r.id }
func (r *Runner) Position() Vec3         { return r.pos }
func (r *Runner) Velocity() (Vec3, bool) { return r.vel, true }
func (r *Runner) IsDetectable() bool     { return !r.neutralized }
func (r *Runner) Mode() Mode             { return r.mode }
func (r *Runner) Stamina() float64       { return r.stamina }
func (r *Runner) Neutralized() bool      { return r.neutralized }

// NoiseLevel is zero while standing still, otherwise the gait's level.
func (r *Runner) NoiseLevel() float64 {
	if r.neutralized || r.vel.Len() <= 0.1 {
		return 0
	}
	switch r.mode {
	case ModeCrouch:
		return r.cfg.CrouchNoise
	case ModeWalk:
		return r.cfg.WalkNoise
	case ModeSprint:
		return r.cfg.SprintNoise
	}
	return 0
}

// Neutralize removes the runner from perception; it stops moving.
func (r *Runner) Neutralize() {
	r.neutralized = true
	r.vel = vecmath.Zero
}

func (r *Runner) Revive() { r.neutralized = false }

// Hold pins the gait until Release; used by interactive drivers.
func (r *Runner) Hold(m Mode) {
	r.mode = m
	r.held = true
}

func (r *Runner) Release() { r.held = false }

func (r *Runner) speed() float64 {
	switch r.mode {
	case ModeCrouch:
		return r.cfg.CrouchSpeed
	case ModeWalk:
		return r.cfg.WalkSpeed
	case ModeSprint:
		return r.cfg.SprintSpeed
	}
	return 0
}

// Step advances the runner by dt seconds.
func (r *Runner) Step(dt float64) {
	if r.neutralized || dt <= 0 {
		r.vel = vecmath.Zero
		return
	}
	if !r.held {
		r.modeLeft -= dt
		if r.modeLeft <= 0 {
			r.pickMode()
		}
	}
	r.tickStamina(dt)
	if r.mode == ModeIdle {
		r.vel = vecmath.Zero
		return
	}
	if !r.hasWaypoint || vecmath.Dist(r.pos, r.waypoint) <= arriveDistance*5 {
		r.pickWaypoint()
		if !r.hasWaypoint {
			r.vel = vecmath.Zero
			return
		}
	}
	to := r.waypoint.Sub(r.pos).Flat()
	rem := to.Len()
	if rem <= arriveDistance {
		r.hasWaypoint = false
		r.vel = vecmath.Zero
		return
	}
	stepLen := r.speed() * dt
	if stepLen > rem {
		stepLen = rem
	}
	next := r.arena.slide(r.pos, to.Scale(stepLen/rem))
	delta := next.Sub(r.pos)
	if delta.LenSq() < 1e-12 {
		r.hasWaypoint = false
		r.vel = vecmath.Zero
		return
	}
	r.vel = delta.Scale(1 / dt)
	r.pos = next
}

func (r *Runner) tickStamina(dt float64) {
	if r.mode == ModeSprint {
		r.stamina -= r.cfg.SprintCost * dt
		if r.stamina < r.cfg.SprintMinStamina {
			r.mode = ModeWalk
		}
		if r.stamina < 0 {
			r.stamina = 0
		}
		return
	}
	r.stamina += r.cfg.StaminaRegen * dt
	if r.stamina > r.cfg.MaxStamina {
		r.stamina = r.cfg.MaxStamina
	}
}

func (r *Runner) pickMode() {
	x := r.rng.Float64()
	switch {
	case x < r.cfg.IdleChance:
		r.mode = ModeIdle
	case x < r.cfg.IdleChance+r.cfg.CrouchChance:
		r.mode = ModeCrouch
	case x < r.cfg.IdleChance+r.cfg.CrouchChance+r.cfg.SprintChance && r.stamina > r.cfg.SprintMinStamina:
		r.mode = ModeSprint
	default:
		r.mode = ModeWalk
	}
	r.modeLeft = 2 + r.rng.Float64()*4
}

func (r *Runner) pickWaypoint() {
	angle := r.rng.Float64() * 360
	dist := r.rng.Float64() * r.cfg.WanderRadius
	p := r.pos.Add(vecmath.YawDir(angle).Scale(dist))
	q, ok := r.arena.SampleNavigable(p, r.cfg.WanderRadius)
	r.waypoint = q
	r.hasWaypoint = ok
}
