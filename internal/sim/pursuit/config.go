package pursuit

import (
	"horde.ai/internal/sim/logic/flocking"
	"horde.ai/internal/sim/logic/perception"
	"horde.ai/internal/sim/tuning"
)

// Config carries the per-hunter tunables. Durations are seconds.
type Config struct {
	Perception perception.Config
	Flocking   flocking.Config

	LoseRadius float64

	NormalSpeed  float64
	AlertedSpeed float64
	FrozenSpeed  float64

	SearchMinRadius   float64
	SearchMaxRadius   float64
	SearchJitter      float64 // fraction of the sector width
	SearchWait        float64
	ArriveDistance    float64
	InvestigateRadius float64

	FlankRadius       float64
	FlankNeighborhood float64
	FlankSnapRadius   float64
	FlankInterval     float64
	FlankMinDistance  float64
	FlankChance       float64
	LeadTime          float64
	LeadMinSpeed      float64

	VelocityMinSpeed float64

	IdleCueMin  float64
	IdleCueMax  float64
	ChaseCueMin float64
	ChaseCueMax float64
}

func DefaultConfig() Config { return ConfigFromTuning(tuning.Defaults().Hunter) }

func ConfigFromTuning(h tuning.Hunter) Config {
	return Config{
		Perception: perception.Config{
			VisionRadius:   h.VisionRadius,
			VisionAngleDeg: h.VisionAngleDeg,
			HearingRadius:  h.HearingRadius,
			NoiseWeight:    h.NoiseWeight,
			EyeHeight:      h.EyeHeight,
		},
		Flocking: flocking.Config{
			SeparationRadius: h.SeparationRadius,
			AlignmentRadius:  h.AlignmentRadius,
			CohesionRadius:   h.CohesionRadius,
			Weight:           h.FlockingWeight,
			MinForce:         h.FlockingMinForce,
			SnapRadius:       h.FlockingSnapRadius,
		},
		LoseRadius: h.LoseRadius,

		NormalSpeed:  h.NormalSpeed,
		AlertedSpeed: h.AlertedSpeed,
		FrozenSpeed:  h.FrozenSpeed,

		SearchMinRadius:   h.SearchMinRadius,
		SearchMaxRadius:   h.SearchMaxRadius,
		SearchJitter:      h.SearchJitter,
		SearchWait:        h.SearchWait,
		ArriveDistance:    h.ArriveDistance,
		InvestigateRadius: h.InvestigateRadius,

		FlankRadius:       h.FlankRadius,
		FlankNeighborhood: h.FlankNeighborhood,
		FlankSnapRadius:   h.FlankSnapRadius,
		FlankInterval:     h.FlankInterval,
		FlankMinDistance:  h.FlankMinDistance,
		FlankChance:       h.FlankChance,
		LeadTime:          h.LeadTime,
		LeadMinSpeed:      h.LeadMinSpeed,

		VelocityMinSpeed: h.VelocityMinSpeed,

		IdleCueMin:  h.IdleCueMin,
		IdleCueMax:  h.IdleCueMax,
		ChaseCueMin: h.ChaseCueMin,
		ChaseCueMax: h.ChaseCueMax,
	}
}
