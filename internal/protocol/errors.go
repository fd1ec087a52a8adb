package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World loop.
	ErrWorldBusy = "E_WORLD_BUSY"

	// Roster and admin requests.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrUnknownHunter   = "E_UNKNOWN_HUNTER"
	ErrDuplicateHunter = "E_DUPLICATE_HUNTER"
	ErrNoNavigator     = "E_NO_NAVIGATOR"
	ErrUnknownPrey     = "E_UNKNOWN_PREY"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrWorldBusy:       {},
	ErrBadRequest:      {},
	ErrUnknownHunter:   {},
	ErrDuplicateHunter: {},
	ErrNoNavigator:     {},
	ErrUnknownPrey:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
