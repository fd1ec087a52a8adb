package protocol

// SUBSCRIBE (client -> server). First message on the observe websocket; may
// be re-sent to change settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Events asks for the tick's pursuit events (state changes, cues).
	Events bool `json:"events,omitempty"`
	// Hunters restricts the hunter list to these ids. Empty means all.
	Hunters []string `json:"hunters,omitempty"`
}

// HTTP response for GET /v1/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
	Obstacles       []Obstacle  `json:"obstacles"`
}

type WorldParams struct {
	TickRateHz int     `json:"tick_rate_hz"`
	Seed       int64   `json:"seed"`
	HalfExtent float64 `json:"half_extent"`
}

type Obstacle struct {
	ID  string     `json:"id"`
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// TICK (server -> client). Sent every tick. The replicated state is
// cosmetic; clients never run decision logic.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Hunters []HunterState `json:"hunters"`
	Prey    []PreyState   `json:"prey"`
	Events  []Event       `json:"events,omitempty"`
}

type HunterState struct {
	ID       string     `json:"id"`
	State    string     `json:"state"`
	Frozen   bool       `json:"frozen"`
	Pos      [3]float64 `json:"pos"`
	Speed    float64    `json:"speed"`
	TargetID string     `json:"target_id,omitempty"`
}

type PreyState struct {
	ID          string     `json:"id"`
	Pos         [3]float64 `json:"pos"`
	Mode        string     `json:"mode"`
	Neutralized bool       `json:"neutralized,omitempty"`
}

type Event struct {
	Tick     uint64      `json:"tick"`
	Type     string      `json:"type"`
	HunterID string      `json:"hunter_id"`
	State    string      `json:"state,omitempty"`
	Prev     string      `json:"prev,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Cue      string      `json:"cue,omitempty"`
	TargetID string      `json:"target_id,omitempty"`
	Pos      *[3]float64 `json:"pos,omitempty"`
	Seq      uint64      `json:"seq,omitempty"`
	Count    int         `json:"count,omitempty"`
	Duration float64     `json:"duration,omitempty"`
}

// ERROR (server -> client), also the body of failed admin requests.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

// Admin request bodies.

type FreezeRequest struct {
	// IDs lists hunters to freeze; empty freezes every hunter.
	IDs      []string `json:"ids,omitempty"`
	Duration float64  `json:"duration"`
}

type FreezeResponse struct {
	Frozen int `json:"frozen"`
}

type SpawnHunterRequest struct {
	ID  string      `json:"id,omitempty"`
	Pos *[3]float64 `json:"pos,omitempty"`
}

type SpawnHunterResponse struct {
	ID string `json:"id"`
}
