package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"horde.ai/internal/persistence/snapshot"
	"horde.ai/internal/sim/tuning"
	"horde.ai/internal/sim/world"
)

// SQLiteIndex is a queryable read model of the tick log. Writes are queued
// and applied by one goroutine; the JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropSnapshot atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick     uint64
	Path     string
	Seed     int64
	Hunters  int
	Prey     int
	Chasing  int
	AlertSeq uint64
}

// Stats reports queue pressure. Drops happen when the writer falls behind.
type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
	DropTickTotal     uint64 `json:"drop_tick_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// A chase burst emits a few events per hunter per tick.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tuning (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			commands INTEGER NOT NULL,
			events INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			target TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			hunter_id TEXT NOT NULL,
			state TEXT,
			cue TEXT,
			target_id TEXT,
			x REAL,
			y REAL,
			z REAL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_hunter_tick ON events(hunter_id, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_tick ON events(type, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			hunters INTEGER NOT NULL,
			prey INTEGER NOT NULL,
			chasing INTEGER NOT NULL,
			alert_seq INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:     snap.Header.Tick,
		Path:     path,
		Seed:     snap.Seed,
		Hunters:  len(snap.Hunters),
		Prey:     len(snap.Prey),
		AlertSeq: snap.Counters.AlertSeq,
	}
	for _, h := range snap.Hunters {
		if h.State == "CHASING" {
			r.Chasing++
		}
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// UpsertTuning stores the tuning actually applied, as canonical JSON.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('protocol_version',?)`, tune.ProtocolVersion); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO tuning(name,digest,json,updated_at) VALUES('tuning',?,?,?)`,
		hex.EncodeToString(sum[:]), string(b), now); err != nil {
		return err
	}
	return tx.Commit()
}

// LatestSnapshot returns the newest recorded snapshot path.
func (s *SQLiteIndex) LatestSnapshot(ctx context.Context) (tick uint64, path string, ok bool, err error) {
	var t int64
	err = s.db.QueryRowContext(ctx, `SELECT tick,path FROM snapshots ORDER BY tick DESC LIMIT 1`).Scan(&t, &path)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}
	return uint64(t), path, true, nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,commands,events,raw_json) VALUES(?,?,?,?,?)`)
	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(tick,seq,kind,target,raw_json) VALUES(?,?,?,?,?)`)
	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(tick,seq,type,hunter_id,state,cue,target_id,x,y,z,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,hunters,prey,chasing,alert_seq) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertCommand, insertEvent, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil {
			return true
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			e := r.tick
			tick := int64(e.Tick)
			b, _ := json.Marshal(e)
			if !exec(insertTick, tick, e.Digest, len(e.Commands), len(e.Events), string(b)) {
				continue
			}
			ok := true
			for i, c := range e.Commands {
				raw, _ := json.Marshal(c)
				if ok = exec(insertCommand, tick, i, string(c.Kind), nullString(c.ID), string(raw)); !ok {
					break
				}
			}
			if !ok {
				continue
			}
			for i, ev := range e.Events {
				raw, _ := json.Marshal(ev)
				var x, y, z sql.NullFloat64
				if ev.Pos != nil {
					x = sql.NullFloat64{Float64: ev.Pos.X, Valid: true}
					y = sql.NullFloat64{Float64: ev.Pos.Y, Valid: true}
					z = sql.NullFloat64{Float64: ev.Pos.Z, Valid: true}
				}
				if !exec(insertEvent, tick, i, string(ev.Type), ev.HunterID,
					nullString(ev.State), nullString(string(ev.Cue)), nullString(ev.TargetID),
					x, y, z, string(raw)) {
					break
				}
			}

		case reqSnapshot:
			sn := r.snapshot
			if !exec(insertSnapshot, int64(sn.Tick), sn.Path, sn.Seed, sn.Hunters, sn.Prey, sn.Chasing, int64(sn.AlertSeq)) {
				continue
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
