package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrWorldBusy,
		ErrBadRequest,
		ErrUnknownHunter,
		ErrDuplicateHunter,
		ErrNoNavigator,
		ErrUnknownPrey,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"SUBSCRIBE","protocol_version":"0.1","events":true}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != TypeSubscribe || m.ProtocolVersion != Version {
		t.Fatalf("base=%+v", m)
	}
	if _, err := DecodeBase([]byte(`{`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}
