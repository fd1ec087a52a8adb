package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_RepoConfigMatchesDefaults(t *testing.T) {
	got, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Defaults()
	if got.Hunter != def.Hunter {
		t.Fatalf("hunter tuning drifted from defaults:\n got %+v\nwant %+v", got.Hunter, def.Hunter)
	}
	if got.Prey != def.Prey {
		t.Fatalf("prey tuning drifted from defaults")
	}
	if len(got.Arena.Obstacles) == 0 {
		t.Fatalf("expected obstacles in repo config")
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "tick_rate_hz: 20\nhunter:\n  vision_radius: 25\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TickRateHz != 20 || got.Hunter.VisionRadius != 25 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Hunter.HearingRadius != 40 || got.Hunter.LoseRadius != 50 {
		t.Fatalf("unset fields lost their defaults: %+v", got.Hunter)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"zero tick rate", "tick_rate_hz: 0\n", "tick_rate_hz"},
		{"negative radius", "hunter:\n  hearing_radius: -1\n", "hearing_radius"},
		{"lose inside vision", "hunter:\n  lose_radius: 20\n", "lose_radius"},
		{"bad obstacle", "arena:\n  obstacles:\n    - { min: [0, 0, 0], max: [1, 0, 1] }\n", "obstacles[0]"},
		{"bad yaml", "hunter: [\n", "tuning.yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tuning.yaml")
			if err := os.WriteFile(path, []byte(tc.raw), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
