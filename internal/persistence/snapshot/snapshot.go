package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 pauses a world: every hunter countdown, navigation binding,
// prey body and random source is captured so a restore resumes exactly.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed               int64 `json:"seed"`
	TickRate           int   `json:"tick_rate_hz"`
	SnapshotEveryTicks int   `json:"snapshot_every_ticks,omitempty"`

	Arena ArenaV1 `json:"arena"`

	Hunters []HunterV1 `json:"hunters"`
	Prey    []PreyV1   `json:"prey"`

	Counters CountersV1 `json:"counters"`

	// RNG is the world's spawn-placement random source.
	RNG []byte `json:"rng,omitempty"`
}

type ArenaV1 struct {
	HalfExtent float64 `json:"half_extent"`
	Obstacles  []BoxV1 `json:"obstacles,omitempty"`
}

type BoxV1 struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

type CountersV1 struct {
	NextHunter uint64 `json:"next_hunter"`
	NextPrey   uint64 `json:"next_prey"`
	NextNum    uint64 `json:"next_num"`
	AlertSeq   uint64 `json:"alert_seq"`
}

type HunterV1 struct {
	ID  string `json:"id"`
	Num uint64 `json:"num"`

	State         string     `json:"state"`
	LastKnown     [3]float64 `json:"last_known"`
	HasLastKnown  bool       `json:"has_last_known"`
	EverPerceived bool       `json:"ever_perceived"`
	TargetID      string     `json:"target_id,omitempty"`

	Velocity [3]float64 `json:"velocity"`
	Speed    float64    `json:"speed"`

	FrozenLeft float64    `json:"frozen_left"`
	SearchWait float64    `json:"search_wait"`
	FlankTimer float64    `json:"flank_timer"`
	FlankSlot  [3]float64 `json:"flank_slot"`
	HasFlank   bool       `json:"has_flank"`
	IdleCue    float64    `json:"idle_cue"`
	ChaseCue   float64    `json:"chase_cue"`

	AlertSeq uint64 `json:"alert_seq"`
	Disabled bool   `json:"disabled,omitempty"`
	RNG      []byte `json:"rng,omitempty"`

	// Nav is nil when the hunter had no navigation binding.
	Nav *NavV1 `json:"nav,omitempty"`
}

type NavV1 struct {
	Pos     [3]float64 `json:"pos"`
	Fwd     [3]float64 `json:"fwd"`
	Dest    [3]float64 `json:"dest"`
	HasDest bool       `json:"has_dest"`
	Vel     [3]float64 `json:"vel"`
	Speed   float64    `json:"speed"`
	Stuck   float64    `json:"stuck"`
}

type PreyV1 struct {
	ID          string     `json:"id"`
	Pos         [3]float64 `json:"pos"`
	Vel         [3]float64 `json:"vel"`
	Waypoint    [3]float64 `json:"waypoint"`
	HasWaypoint bool       `json:"has_waypoint"`
	Mode        string     `json:"mode"`
	ModeLeft    float64    `json:"mode_left"`
	Held        bool       `json:"held,omitempty"`
	Stamina     float64    `json:"stamina"`
	Neutralized bool       `json:"neutralized,omitempty"`
	RNG         []byte     `json:"rng,omitempty"`
}

// Path returns the conventional snapshot file for tick under dir.
func Path(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d.snap.zst", tick))
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes snap as a zstd stream: one JSON header line, then gob.
func Encode(w io.Writer, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	f, err := os.Open(path)
	if err != nil {
		return SnapshotV1{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a stream written by Encode.
func Decode(r io.Reader) (SnapshotV1, error) {
	var snap SnapshotV1
	dec, err := zstd.NewReader(r)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// The header line is for humans and tools; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != 1 {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader reads only the leading JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
