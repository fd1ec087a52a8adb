package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks" json:"snapshot_every_ticks"`

	Arena  Arena  `yaml:"arena" json:"arena"`
	Hunter Hunter `yaml:"hunter" json:"hunter"`
	Prey   Prey   `yaml:"prey" json:"prey"`
}

type Arena struct {
	HalfExtent     float64 `yaml:"half_extent" json:"half_extent"`
	InitialHunters int     `yaml:"initial_hunters" json:"initial_hunters"`
	InitialPrey    int     `yaml:"initial_prey" json:"initial_prey"`
	Obstacles      []Box   `yaml:"obstacles" json:"obstacles,omitempty"`
}

type Box struct {
	Min [3]float64 `yaml:"min" json:"min"`
	Max [3]float64 `yaml:"max" json:"max"`
}

// Hunter holds every per-agent tunable. Durations are seconds.
type Hunter struct {
	VisionRadius   float64 `yaml:"vision_radius" json:"vision_radius"`
	VisionAngleDeg float64 `yaml:"vision_angle_deg" json:"vision_angle_deg"`
	HearingRadius  float64 `yaml:"hearing_radius" json:"hearing_radius"`
	NoiseWeight    float64 `yaml:"noise_weight" json:"noise_weight"`
	EyeHeight      float64 `yaml:"eye_height" json:"eye_height"`
	LoseRadius     float64 `yaml:"lose_radius" json:"lose_radius"`

	NormalSpeed  float64 `yaml:"normal_speed" json:"normal_speed"`
	AlertedSpeed float64 `yaml:"alerted_speed" json:"alerted_speed"`
	FrozenSpeed  float64 `yaml:"frozen_speed" json:"frozen_speed"`

	SearchMinRadius   float64 `yaml:"search_min_radius" json:"search_min_radius"`
	SearchMaxRadius   float64 `yaml:"search_max_radius" json:"search_max_radius"`
	SearchJitter      float64 `yaml:"search_jitter" json:"search_jitter"`
	SearchWait        float64 `yaml:"search_wait" json:"search_wait"`
	ArriveDistance    float64 `yaml:"arrive_distance" json:"arrive_distance"`
	InvestigateRadius float64 `yaml:"investigate_radius" json:"investigate_radius"`

	FlankRadius       float64 `yaml:"flank_radius" json:"flank_radius"`
	FlankNeighborhood float64 `yaml:"flank_neighborhood" json:"flank_neighborhood"`
	FlankSnapRadius   float64 `yaml:"flank_snap_radius" json:"flank_snap_radius"`
	FlankInterval     float64 `yaml:"flank_interval" json:"flank_interval"`
	FlankMinDistance  float64 `yaml:"flank_min_distance" json:"flank_min_distance"`
	FlankChance       float64 `yaml:"flank_chance" json:"flank_chance"`
	LeadTime          float64 `yaml:"lead_time" json:"lead_time"`
	LeadMinSpeed      float64 `yaml:"lead_min_speed" json:"lead_min_speed"`

	SeparationRadius   float64 `yaml:"separation_radius" json:"separation_radius"`
	AlignmentRadius    float64 `yaml:"alignment_radius" json:"alignment_radius"`
	CohesionRadius     float64 `yaml:"cohesion_radius" json:"cohesion_radius"`
	FlockingWeight     float64 `yaml:"flocking_weight" json:"flocking_weight"`
	FlockingMinForce   float64 `yaml:"flocking_min_force" json:"flocking_min_force"`
	FlockingSnapRadius float64 `yaml:"flocking_snap_radius" json:"flocking_snap_radius"`
	VelocityMinSpeed   float64 `yaml:"velocity_min_speed" json:"velocity_min_speed"`

	IdleCueMin  float64 `yaml:"idle_cue_min" json:"idle_cue_min"`
	IdleCueMax  float64 `yaml:"idle_cue_max" json:"idle_cue_max"`
	ChaseCueMin float64 `yaml:"chase_cue_min" json:"chase_cue_min"`
	ChaseCueMax float64 `yaml:"chase_cue_max" json:"chase_cue_max"`

	FreezeDuration float64 `yaml:"freeze_duration" json:"freeze_duration"`
}

// Prey drives the simulated runners used by the server and sandbox.
type Prey struct {
	Radius       float64 `yaml:"radius" json:"radius"`
	Height       float64 `yaml:"height" json:"height"`
	CrouchSpeed  float64 `yaml:"crouch_speed" json:"crouch_speed"`
	WalkSpeed    float64 `yaml:"walk_speed" json:"walk_speed"`
	SprintSpeed  float64 `yaml:"sprint_speed" json:"sprint_speed"`
	CrouchNoise  float64 `yaml:"crouch_noise" json:"crouch_noise"`
	WalkNoise    float64 `yaml:"walk_noise" json:"walk_noise"`
	SprintNoise  float64 `yaml:"sprint_noise" json:"sprint_noise"`
	SprintChance float64 `yaml:"sprint_chance" json:"sprint_chance"`
	CrouchChance float64 `yaml:"crouch_chance" json:"crouch_chance"`
	IdleChance   float64 `yaml:"idle_chance" json:"idle_chance"`
	WanderRadius float64 `yaml:"wander_radius" json:"wander_radius"`

	// Sprinting drains stamina; below SprintMinStamina runners fall back to walking.
	MaxStamina       float64 `yaml:"max_stamina" json:"max_stamina"`
	SprintCost       float64 `yaml:"sprint_cost" json:"sprint_cost"`
	StaminaRegen     float64 `yaml:"stamina_regen" json:"stamina_regen"`
	SprintMinStamina float64 `yaml:"sprint_min_stamina" json:"sprint_min_stamina"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "0.1",
		TickRateHz:         10,
		SnapshotEveryTicks: 3000,
		Arena: Arena{
			HalfExtent:     60,
			InitialHunters: 8,
			InitialPrey:    2,
		},
		Hunter: Hunter{
			VisionRadius:   30,
			VisionAngleDeg: 180,
			HearingRadius:  40,
			NoiseWeight:    10,
			EyeHeight:      1,
			LoseRadius:     50,

			NormalSpeed:  2,
			AlertedSpeed: 3.5,
			FrozenSpeed:  0.5,

			SearchMinRadius:   7.5,
			SearchMaxRadius:   15,
			SearchJitter:      0.3,
			SearchWait:        3,
			ArriveDistance:    2,
			InvestigateRadius: 3,

			FlankRadius:       8,
			FlankNeighborhood: 20,
			FlankSnapRadius:   10,
			FlankInterval:     2,
			FlankMinDistance:  5,
			FlankChance:       0.3,
			LeadTime:          1,
			LeadMinSpeed:      0.1,

			SeparationRadius:   2,
			AlignmentRadius:    5,
			CohesionRadius:     5,
			FlockingWeight:     0.5,
			FlockingMinForce:   0.1,
			FlockingSnapRadius: 5,
			VelocityMinSpeed:   0.1,

			IdleCueMin:  8,
			IdleCueMax:  15,
			ChaseCueMin: 4,
			ChaseCueMax: 7,

			FreezeDuration: 5,
		},
		Prey: Prey{
			Radius:       0.4,
			Height:       1.8,
			CrouchSpeed:  1.5,
			WalkSpeed:    3,
			SprintSpeed:  5,
			CrouchNoise:  0.1,
			WalkNoise:    0.3,
			SprintNoise:  1,
			SprintChance: 0.25,
			CrouchChance: 0.15,
			IdleChance:   0.1,
			WanderRadius: 25,

			MaxStamina:       100,
			SprintCost:       20,
			StaminaRegen:     15,
			SprintMinStamina: 5,
		},
	}
}

// Load overlays path on Defaults and validates the result.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0 (got %d)", t.TickRateHz)
	}
	if t.SnapshotEveryTicks < 0 {
		return fmt.Errorf("snapshot_every_ticks must be >= 0")
	}
	if t.Arena.HalfExtent <= 0 {
		return fmt.Errorf("arena.half_extent must be > 0")
	}
	if t.Arena.InitialHunters < 0 || t.Arena.InitialPrey < 0 {
		return fmt.Errorf("arena initial counts must be >= 0")
	}
	for i, b := range t.Arena.Obstacles {
		for k := 0; k < 3; k++ {
			if b.Max[k] <= b.Min[k] {
				return fmt.Errorf("arena.obstacles[%d]: max must exceed min on every axis", i)
			}
		}
	}

	if t.Prey.Radius <= 0 || t.Prey.Height <= 0 {
		return fmt.Errorf("prey.radius and prey.height must be > 0")
	}
	if c := t.Prey.IdleChance + t.Prey.CrouchChance + t.Prey.SprintChance; c > 1 {
		return fmt.Errorf("prey mode chances sum to %v (> 1)", c)
	}

	h := t.Hunter
	nonNeg := []struct {
		name string
		v    float64
	}{
		{"vision_radius", h.VisionRadius},
		{"hearing_radius", h.HearingRadius},
		{"noise_weight", h.NoiseWeight},
		{"normal_speed", h.NormalSpeed},
		{"alerted_speed", h.AlertedSpeed},
		{"frozen_speed", h.FrozenSpeed},
		{"search_min_radius", h.SearchMinRadius},
		{"search_wait", h.SearchWait},
		{"arrive_distance", h.ArriveDistance},
		{"investigate_radius", h.InvestigateRadius},
		{"flank_radius", h.FlankRadius},
		{"flank_neighborhood", h.FlankNeighborhood},
		{"flank_interval", h.FlankInterval},
		{"separation_radius", h.SeparationRadius},
		{"alignment_radius", h.AlignmentRadius},
		{"cohesion_radius", h.CohesionRadius},
		{"flocking_weight", h.FlockingWeight},
		{"freeze_duration", h.FreezeDuration},
	}
	for _, f := range nonNeg {
		if f.v < 0 {
			return fmt.Errorf("hunter.%s must be >= 0", f.name)
		}
	}
	if h.VisionAngleDeg < 0 || h.VisionAngleDeg > 360 {
		return fmt.Errorf("hunter.vision_angle_deg must be within [0,360]")
	}
	if h.SearchMaxRadius < h.SearchMinRadius {
		return fmt.Errorf("hunter.search_max_radius must be >= search_min_radius")
	}
	if h.LoseRadius <= h.VisionRadius {
		return fmt.Errorf("hunter.lose_radius (%v) must exceed vision_radius (%v)", h.LoseRadius, h.VisionRadius)
	}
	if h.FlankChance < 0 || h.FlankChance > 1 {
		return fmt.Errorf("hunter.flank_chance must be within [0,1]")
	}
	if h.IdleCueMax < h.IdleCueMin || h.ChaseCueMax < h.ChaseCueMin {
		return fmt.Errorf("hunter cue intervals: max must be >= min")
	}
	return nil
}
