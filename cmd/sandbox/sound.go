package main

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"horde.ai/internal/sim/pursuit"
)

const sampleRate = beep.SampleRate(44100)

// tone is a short sine blip for one cue.
type tone struct {
	freq float64
	dur  time.Duration
}

var cueTones = map[pursuit.Cue]tone{
	pursuit.CueAlertCry:      {freq: 660, dur: 120 * time.Millisecond},
	pursuit.CueAlertResponse: {freq: 440, dur: 50 * time.Millisecond},
	pursuit.CueChaseGroan:    {freq: 110, dur: 80 * time.Millisecond},
	pursuit.CueIdleGroan:     {freq: 70, dur: 40 * time.Millisecond},
}

type cuePlayer struct {
	enabled bool
}

func newCuePlayer(enabled bool) *cuePlayer {
	if !enabled {
		return &cuePlayer{}
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// Non-fatal, the sandbox runs without sound.
		log.Printf("audio init failed: %v", err)
		return &cuePlayer{}
	}
	return &cuePlayer{enabled: true}
}

// listener plays cue events. Speaker playback is asynchronous, so the tick
// never waits on audio.
func (p *cuePlayer) listener(ev pursuit.Event) {
	if !p.enabled || ev.Type != pursuit.EventCue {
		return
	}
	t, ok := cueTones[ev.Cue]
	if !ok {
		return
	}
	sine, err := generators.SineTone(sampleRate, t.freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(t.dur), sine))
}

func (p *cuePlayer) Close() {
	if p.enabled {
		speaker.Close()
	}
}
