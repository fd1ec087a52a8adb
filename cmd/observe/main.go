package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"horde.ai/internal/protocol"
)

func main() {
	var (
		url     = flag.String("url", "ws://localhost:8080/v1/observe", "observe websocket url")
		events  = flag.Bool("events", true, "subscribe to pursuit events")
		hunters = flag.String("hunters", "", "comma separated hunter ids to follow (empty = all)")
		every   = flag.Uint64("every", 50, "log a roster summary every N ticks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[observe] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := protocol.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: protocol.Version,
		Events:          *events,
	}
	for _, id := range strings.Split(*hunters, ",") {
		if id = strings.TrimSpace(id); id != "" {
			sub.Hunters = append(sub.Hunters, id)
		}
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err == nil {
				logger.Printf("ERROR code=%s message=%s", e.Code, e.Message)
			}

		case protocol.TypeTick:
			var t protocol.TickMsg
			if err := json.Unmarshal(msg, &t); err != nil {
				continue
			}
			handleTick(logger, &t, *every)
		}
	}
}

func handleTick(logger *log.Logger, t *protocol.TickMsg, every uint64) {
	for _, ev := range t.Events {
		if ev.Type == "CUE" && ev.Cue == "IDLE_GROAN" {
			continue
		}
		logger.Printf("tick=%d %s", t.Tick, describe(ev))
	}
	if every == 0 || t.Tick%every != 0 {
		return
	}
	counts := map[string]int{}
	frozen := 0
	for _, h := range t.Hunters {
		counts[h.State]++
		if h.Frozen {
			frozen++
		}
	}
	logger.Printf("tick=%d hunters=%d searching=%d alerted=%d chasing=%d frozen=%d prey=%d",
		t.Tick, len(t.Hunters), counts["SEARCHING"], counts["ALERTED"], counts["CHASING"], frozen, len(t.Prey))
}

func describe(ev protocol.Event) string {
	var b strings.Builder
	b.WriteString(ev.Type)
	b.WriteString(" hunter=")
	b.WriteString(ev.HunterID)
	for _, kv := range [][2]string{
		{"prev", ev.Prev}, {"state", ev.State}, {"reason", ev.Reason},
		{"cue", ev.Cue}, {"target", ev.TargetID},
	} {
		if kv[1] != "" {
			b.WriteString(" " + kv[0] + "=" + kv[1])
		}
	}
	return b.String()
}
