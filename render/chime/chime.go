package chime

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
)

// SampleRate is the speaker and streamer rate
const SampleRate = beep.SampleRate(44100)

// Tone is a single sine note
type Tone struct {
	Freq     float64
	Duration time.Duration
}

var tones = map[engine.EventType]Tone{
	engine.EventParked:     {Freq: 880, Duration: 80 * time.Millisecond},
	engine.EventCheckedOut: {Freq: 660, Duration: 60 * time.Millisecond},
	engine.EventReassigned: {Freq: 520, Duration: 50 * time.Millisecond},
	engine.EventStalled:    {Freq: 220, Duration: 250 * time.Millisecond},
}

// stalled outranks parked, which outranks the rest
var priority = map[engine.EventType]int{
	engine.EventStalled:    3,
	engine.EventParked:     2,
	engine.EventCheckedOut: 1,
	engine.EventReassigned: 1,
}

// ToneFor returns the tone for an event type
func ToneFor(t engine.EventType) (Tone, bool) {
	tone, ok := tones[t]
	return tone, ok
}

// Pick returns the tone of the most significant event in the batch
func Pick(events []engine.Event) (Tone, bool) {
	best, found := Tone{}, false
	rank := 0
	for _, ev := range events {
		tone, ok := tones[ev.Type]
		if !ok || priority[ev.Type] <= rank {
			continue
		}
		best, rank, found = tone, priority[ev.Type], true
	}
	return best, found
}

// Streamer builds the sound of a tone at volume, 1 being full scale
func (t Tone) Streamer(volume float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(SampleRate, t.Freq)
	if err != nil {
		return nil, err
	}
	s := beep.Take(SampleRate.N(t.Duration), sine)
	if volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}, nil
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume)}, nil
}

// Player sends tones to the speaker. A player whose speaker failed to start
// stays silent.
type Player struct {
	mu     sync.Mutex
	volume float64
	ready  bool
	play   func(...beep.Streamer)
}

// NewPlayer creates a silent player; call Init to open the speaker
func NewPlayer(volume float64) *Player {
	return &Player{volume: volume, play: speaker.Play}
}

// Init opens the speaker with a 100ms buffer
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	p.ready = true
	return nil
}

// Notify plays the tone of the most significant event, if any
func (p *Player) Notify(events []engine.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return false
	}
	tone, ok := Pick(events)
	if !ok {
		return false
	}
	s, err := tone.Streamer(p.volume)
	if err != nil {
		log.Printf("[CHIME] tone %.0fHz: %v", tone.Freq, err)
		return false
	}
	p.play(s)
	return true
}

// Close releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		speaker.Close()
		p.ready = false
	}
}
