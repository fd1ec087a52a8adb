package main

import "testing"

func TestParseVec3(t *testing.T) {
	v, err := parseVec3(" 1.5, 0 ,-3")
	if err != nil {
		t.Fatalf("parseVec3: %v", err)
	}
	if v != [3]float64{1.5, 0, -3} {
		t.Fatalf("got %v", v)
	}
	if _, err := parseVec3("1,2"); err == nil {
		t.Fatalf("expected error for two components")
	}
	if _, err := parseVec3("a,b,c"); err == nil {
		t.Fatalf("expected error for non-numbers")
	}
}

func TestFilters(t *testing.T) {
	where, params := filters(map[string]string{"hunter_id": "H1", "type": "BROADCAST"})
	if where != " WHERE hunter_id = ? AND type = ?" {
		t.Fatalf("where=%q", where)
	}
	if len(params) != 2 || params[0] != "H1" || params[1] != "BROADCAST" {
		t.Fatalf("params=%v", params)
	}
	if where, params := filters(map[string]string{"kind": " "}); where != "" || len(params) != 0 {
		t.Fatalf("blank filter: %q %v", where, params)
	}
}
