// Package chime plays short tones for notable yard events.
//
// Each batch of events maps to at most one tone: a stalled truck outranks a
// parked one, which outranks check-outs and reassignments. Tones are sine
// bursts from beep's generators played through the speaker.
//
// Usage:
//
//	player := chime.NewPlayer(0.5)
//	if err := player.Init(); err != nil {
//		log.Printf("sound disabled: %v", err)
//	}
//	defer player.Close()
//
//	player.Notify(events)
package chime
