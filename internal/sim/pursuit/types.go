package pursuit

import (
	"errors"

	"horde.ai/internal/sim/logic/perception"
	"horde.ai/internal/sim/logic/vecmath"
)

type Vec3 = vecmath.Vec3

// Prey is a target candidate. It is the sensory model's view of a runner.
type Prey = perception.Target

var (
	ErrNoNavigator     = errors.New("hunter has no navigator")
	ErrDuplicateHunter = errors.New("hunter already registered")
	ErrUnknownHunter   = errors.New("unknown hunter")
)

type State uint8

const (
	Searching State = iota
	Alerted
	Chasing
)

func (s State) String() string {
	switch s {
	case Searching:
		return "SEARCHING"
	case Alerted:
		return "ALERTED"
	case Chasing:
		return "CHASING"
	default:
		return "UNKNOWN"
	}
}

func (s State) Valid() bool { return s <= Chasing }

func ParseState(v string) (State, bool) {
	switch v {
	case "SEARCHING":
		return Searching, true
	case "ALERTED":
		return Alerted, true
	case "CHASING":
		return Chasing, true
	}
	return Searching, false
}

// Navigator is the path-following service that owns a hunter's body.
// The pursuit core never plans paths; it only picks destinations and speeds.
type Navigator interface {
	Position() Vec3
	Forward() Vec3

	SetDestination(p Vec3)
	Destination() Vec3
	HasActivePath() bool
	RemainingDistance() float64
	CurrentVelocity() Vec3

	// SampleNearestNavigablePoint snaps p onto walkable ground within maxRadius.
	SampleNearestNavigablePoint(p Vec3, maxRadius float64) (Vec3, bool)
	SetSpeed(speed float64)
}

// AlertEvent is a sighting shared with the rest of the roster.
type AlertEvent struct {
	From string
	Pos  Vec3
	// Seq is assigned by the directory; each sighting gets a new one.
	Seq uint64
}
