package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"horde.ai/internal/protocol"
	"horde.ai/internal/sim/world"
)

// Server streams the world's replicated pursuit state to read-only observers
// and exposes loopback-only admin endpoints.
type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader

	// adminTimeout bounds how long an admin request waits for the tick.
	adminTimeout time.Duration
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[observer] ", log.LstdFlags)
	}
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		adminTimeout: 2 * time.Second,
	}
}

// Routes registers every handler on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/v1/observe", s.WSHandler())
	mux.HandleFunc("/admin/v1/freeze", s.FreezeHandler())
	mux.HandleFunc("/admin/v1/hunters", s.HuntersHandler())
	mux.HandleFunc("/admin/v1/snapshot", s.SnapshotHandler())
	mux.HandleFunc("/admin/v1/metrics", s.MetricsHandler())
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		cfg := s.world.Config()
		a := s.world.Arena()
		resp := protocol.BootstrapResponse{
			ProtocolVersion: protocol.Version,
			WorldID:         cfg.ID,
			Tick:            s.world.CurrentTick(),
			WorldParams: protocol.WorldParams{
				TickRateHz: cfg.TickRateHz,
				Seed:       cfg.Seed,
				HalfExtent: a.HalfExtent(),
			},
			Obstacles: []protocol.Obstacle{},
		}
		for _, b := range a.Obstacles() {
			resp.Obstacles = append(resp.Obstacles, protocol.Obstacle{ID: b.ID, Min: b.Min.Array(), Max: b.Max.Array()})
		}

		writeJSON(rw, http.StatusOK, resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, reason := parseSubscribe(msg)
		if reason != "" {
			s.writeError(conn, protocol.ErrProtoBadRequest, reason)
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
			return
		}

		sid := uuid.NewString()
		tickOut := make(chan []byte, 8)

		joinReq := world.ObserverJoinRequest{
			SessionID: sid,
			TickOut:   tickOut,
			Events:    sub.Events,
			Hunters:   sub.Hunters,
		}
		select {
		case s.world.ObserverJoin() <- joinReq:
		default:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
			return
		}
		s.log.Printf("observer %s joined from %s", sid, r.RemoteAddr)
		defer func() {
			select {
			case s.world.ObserverLeave() <- sid:
			default:
				// World loop is stopping; nothing else to do.
			}
			s.log.Printf("observer %s left", sid)
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-tickOut:
					if !ok {
						writeErr <- nil
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			sub, reason := parseSubscribe(msg)
			if reason != "" {
				continue
			}
			req := world.ObserverSubscribeRequest{
				SessionID: sid,
				Events:    sub.Events,
				Hunters:   sub.Hunters,
			}
			select {
			case s.world.ObserverSubscribe() <- req:
			default:
				// Drop updates under load; the client may resend.
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func parseSubscribe(msg []byte) (protocol.SubscribeMsg, string) {
	var sub protocol.SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, "bad subscribe"
	}
	if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != protocol.Version {
		return sub, "expected SUBSCRIBE"
	}
	if len(sub.Hunters) > 256 {
		sub.Hunters = sub.Hunters[:256]
	}
	return sub, ""
}

func (s *Server) writeError(conn *websocket.Conn, code, message string) {
	b, _ := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
