package observer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"horde.ai/internal/protocol"
	"horde.ai/internal/sim/pursuit"
	"horde.ai/internal/sim/world"
)

const maxAdminBody = 64 * 1024

// FreezeHandler serves POST /admin/v1/freeze.
func (s *Server) FreezeHandler() http.HandlerFunc {
	return s.admin(http.MethodPost, func(ctx context.Context, r *http.Request) (any, error) {
		var req protocol.FreezeRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		n, err := s.world.Freeze(ctx, req.IDs, req.Duration)
		if err != nil {
			return nil, err
		}
		return protocol.FreezeResponse{Frozen: n}, nil
	})
}

// HuntersHandler serves POST (spawn) and DELETE ?id= (despawn) on
// /admin/v1/hunters.
func (s *Server) HuntersHandler() http.HandlerFunc {
	spawn := s.admin(http.MethodPost, func(ctx context.Context, r *http.Request) (any, error) {
		var req protocol.SpawnHunterRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		var pos *world.Vec3
		if req.Pos != nil {
			p := world.Vec3{X: req.Pos[0], Y: req.Pos[1], Z: req.Pos[2]}
			pos = &p
		}
		id, err := s.world.SpawnHunter(ctx, req.ID, pos)
		if err != nil {
			return nil, err
		}
		s.log.Printf("admin: spawned hunter %s", id)
		return protocol.SpawnHunterResponse{ID: id}, nil
	})
	despawn := s.admin(http.MethodDelete, func(ctx context.Context, r *http.Request) (any, error) {
		id := r.URL.Query().Get("id")
		if id == "" {
			return nil, errBadRequest("missing id")
		}
		if err := s.world.DespawnHunter(ctx, id); err != nil {
			return nil, err
		}
		s.log.Printf("admin: despawned hunter %s", id)
		return protocol.SpawnHunterResponse{ID: id}, nil
	})
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			despawn(rw, r)
			return
		}
		spawn(rw, r)
	}
}

// SnapshotHandler serves POST /admin/v1/snapshot.
func (s *Server) SnapshotHandler() http.HandlerFunc {
	return s.admin(http.MethodPost, func(ctx context.Context, r *http.Request) (any, error) {
		tick, err := s.world.RequestSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]uint64{"tick": tick}, nil
	})
}

// MetricsHandler serves GET /admin/v1/metrics.
func (s *Server) MetricsHandler() http.HandlerFunc {
	return s.admin(http.MethodGet, func(ctx context.Context, r *http.Request) (any, error) {
		return s.world.Metrics(), nil
	})
}

func (s *Server) admin(method string, fn func(ctx context.Context, r *http.Request) (any, error)) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.adminTimeout)
		defer cancel()

		resp, err := fn(ctx, r)
		if err != nil {
			code, status := errorCode(err)
			if status >= http.StatusInternalServerError {
				s.log.Printf("admin %s %s: %v", r.Method, r.URL.Path, err)
			}
			writeJSON(rw, status, protocol.ErrorMsg{
				Type:            protocol.TypeError,
				ProtocolVersion: protocol.Version,
				Code:            code,
				Message:         err.Error(),
			})
			return
		}
		writeJSON(rw, http.StatusOK, resp)
	}
}

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequestError(msg) }

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAdminBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequest("bad json: " + err.Error())
	}
	return nil
}

// errorCode maps world and directory errors onto protocol codes.
func errorCode(err error) (string, int) {
	var bad badRequestError
	switch {
	case errors.As(err, &bad):
		return protocol.ErrBadRequest, http.StatusBadRequest
	case errors.Is(err, pursuit.ErrUnknownHunter):
		return protocol.ErrUnknownHunter, http.StatusNotFound
	case errors.Is(err, pursuit.ErrDuplicateHunter):
		return protocol.ErrDuplicateHunter, http.StatusConflict
	case errors.Is(err, pursuit.ErrNoNavigator):
		return protocol.ErrNoNavigator, http.StatusUnprocessableEntity
	case errors.Is(err, world.ErrUnknownPrey):
		return protocol.ErrUnknownPrey, http.StatusNotFound
	case errors.Is(err, world.ErrBadCommand), errors.Is(err, world.ErrNoFloor):
		return protocol.ErrBadRequest, http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return protocol.ErrWorldBusy, http.StatusServiceUnavailable
	}
	return protocol.ErrInternal, http.StatusInternalServerError
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
