package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"horde.ai/internal/protocol"
)

func adminFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	return fs, baseURL
}

func metricsCmd(args []string) {
	fs, baseURL := adminFlags("metrics")
	_ = fs.Parse(args)
	doAdmin(http.MethodGet, *baseURL, "/admin/v1/metrics", nil)
}

func snapshotCmd(args []string) {
	fs, baseURL := adminFlags("snapshot")
	_ = fs.Parse(args)
	doAdmin(http.MethodPost, *baseURL, "/admin/v1/snapshot", nil)
}

func freezeCmd(args []string) {
	fs, baseURL := adminFlags("freeze")
	ids := fs.String("ids", "", "comma separated hunter ids (empty freezes all)")
	duration := fs.Float64("duration", 0, "freeze seconds (0 uses the tuned default)")
	_ = fs.Parse(args)

	req := protocol.FreezeRequest{Duration: *duration}
	for _, id := range strings.Split(*ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.IDs = append(req.IDs, id)
		}
	}
	doAdmin(http.MethodPost, *baseURL, "/admin/v1/freeze", req)
}

func spawnCmd(args []string) {
	fs, baseURL := adminFlags("spawn")
	id := fs.String("id", "", "hunter id (optional)")
	pos := fs.String("pos", "", "spawn position x,y,z (optional)")
	_ = fs.Parse(args)

	req := protocol.SpawnHunterRequest{ID: strings.TrimSpace(*id)}
	if strings.TrimSpace(*pos) != "" {
		p, err := parseVec3(*pos)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -pos:", err)
			os.Exit(2)
		}
		req.Pos = &p
	}
	doAdmin(http.MethodPost, *baseURL, "/admin/v1/hunters", req)
}

func despawnCmd(args []string) {
	fs, baseURL := adminFlags("despawn")
	id := fs.String("id", "", "hunter id")
	_ = fs.Parse(args)
	if strings.TrimSpace(*id) == "" {
		fmt.Fprintln(os.Stderr, "missing -id")
		os.Exit(2)
	}
	doAdmin(http.MethodDelete, *baseURL, "/admin/v1/hunters?id="+url.QueryEscape(strings.TrimSpace(*id)), nil)
}

func doAdmin(method, baseURL, path string, body any) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fmt.Fprintln(os.Stderr, "encode:", err)
			os.Exit(1)
		}
		rd = bytes.NewReader(b)
	}
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	req, err := http.NewRequest(method, u, rd)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(2)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cl := &http.Client{Timeout: 10 * time.Second}
	resp, err := cl.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

func parseVec3(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z")
	}
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return v, err
		}
		v[i] = n
	}
	return v, nil
}
