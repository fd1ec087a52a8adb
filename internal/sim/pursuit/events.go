package pursuit

type EventType string

const (
	EventSpawned   EventType = "SPAWNED"
	EventDespawned EventType = "DESPAWNED"
	EventDisabled  EventType = "DISABLED"
	EventState     EventType = "STATE"
	EventSpotted   EventType = "SPOTTED"
	EventLost      EventType = "LOST"
	EventAlerted   EventType = "ALERTED"
	EventBroadcast EventType = "BROADCAST"
	EventFrozen    EventType = "FROZEN"
	EventThawed    EventType = "THAWED"
	EventCue       EventType = "CUE"
)

// Cue names a cosmetic sound/animation trigger. The core never waits on them.
type Cue string

const (
	CueIdleGroan     Cue = "IDLE_GROAN"
	CueChaseGroan    Cue = "CHASE_GROAN"
	CueAlertCry      Cue = "ALERT_CRY"
	CueAlertResponse Cue = "ALERT_RESPONSE"
)

// Event is emitted by the directory for audio, animation, replication and logs.
type Event struct {
	Tick     uint64    `json:"tick"`
	Type     EventType `json:"type"`
	HunterID string    `json:"hunter_id"`

	State    string  `json:"state,omitempty"`
	Prev     string  `json:"prev,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	Cue      Cue     `json:"cue,omitempty"`
	TargetID string  `json:"target_id,omitempty"`
	Pos      *Vec3   `json:"pos,omitempty"`
	Seq      uint64  `json:"seq,omitempty"`
	Count    int     `json:"count,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Listener receives events synchronously inside the tick. It may request
// roster changes; those are applied at the next tick boundary.
type Listener func(Event)

func posPtr(p Vec3) *Vec3 { return &p }
