package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// dbCmd queries the read-model index written by the server.
func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	hunterID := fs.String("hunter", "", "hunter_id filter (events)")
	eventType := fs.String("type", "", "event type filter (events), e.g. BROADCAST")
	kind := fs.String("kind", "", "command kind filter (commands)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	if *limit <= 0 {
		*limit = 20
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	enc := json.NewEncoder(os.Stdout)
	switch q {
	case "snapshots":
		rows, err := db.Query(`SELECT tick,path,seed,hunters,prey,chasing,alert_seq FROM snapshots ORDER BY tick DESC LIMIT ?`, *limit)
		exitOn(err, "query")
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick     int64  `json:"tick"`
				Path     string `json:"path"`
				Seed     int64  `json:"seed"`
				Hunters  int    `json:"hunters"`
				Prey     int    `json:"prey"`
				Chasing  int    `json:"chasing"`
				AlertSeq int64  `json:"alert_seq"`
			}
			exitOn(rows.Scan(&r.Tick, &r.Path, &r.Seed, &r.Hunters, &r.Prey, &r.Chasing, &r.AlertSeq), "scan")
			_ = enc.Encode(r)
		}
		exitOn(rows.Err(), "rows")

	case "ticks":
		rows, err := db.Query(`SELECT tick,digest,commands,events FROM ticks ORDER BY tick DESC LIMIT ?`, *limit)
		exitOn(err, "query")
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick     int64  `json:"tick"`
				Digest   string `json:"digest"`
				Commands int    `json:"commands"`
				Events   int    `json:"events"`
			}
			exitOn(rows.Scan(&r.Tick, &r.Digest, &r.Commands, &r.Events), "scan")
			_ = enc.Encode(r)
		}
		exitOn(rows.Err(), "rows")

	case "events":
		where, params := filters(map[string]string{"hunter_id": *hunterID, "type": *eventType})
		params = append(params, *limit)
		rows, err := db.Query(`SELECT raw_json FROM events`+where+` ORDER BY tick DESC, seq DESC LIMIT ?`, params...)
		exitOn(err, "query")
		defer rows.Close()
		printRaw(rows)

	case "commands":
		where, params := filters(map[string]string{"kind": *kind})
		params = append(params, *limit)
		rows, err := db.Query(`SELECT raw_json FROM commands`+where+` ORDER BY tick DESC, seq DESC LIMIT ?`, params...)
		exitOn(err, "query")
		defer rows.Close()
		printRaw(rows)

	case "tuning":
		var digest, raw, updated string
		err := db.QueryRow(`SELECT digest,json,updated_at FROM tuning WHERE name='tuning'`).Scan(&digest, &raw, &updated)
		if err == sql.ErrNoRows {
			fmt.Fprintln(os.Stderr, "no tuning recorded")
			os.Exit(2)
		}
		exitOn(err, "query")
		fmt.Printf("digest=%s updated_at=%s\n%s\n", digest, updated, raw)

	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q, "(snapshots|ticks|events|commands|tuning)")
		os.Exit(2)
	}
}

// filters builds a WHERE clause from the non-empty column filters.
func filters(cols map[string]string) (string, []any) {
	var conds []string
	var params []any
	for _, col := range []string{"hunter_id", "type", "kind"} {
		v := strings.TrimSpace(cols[col])
		if v == "" {
			continue
		}
		conds = append(conds, col+" = ?")
		params = append(params, v)
	}
	if len(conds) == 0 {
		return "", params
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}

func printRaw(rows *sql.Rows) {
	for rows.Next() {
		var raw string
		exitOn(rows.Scan(&raw), "scan")
		fmt.Println(raw)
	}
	exitOn(rows.Err(), "rows")
}

func exitOn(err error, what string) {
	if err != nil {
		fmt.Fprintln(os.Stderr, what+":", err)
		os.Exit(1)
	}
}
