// Package websocket streams yard frames and simulation events to browser
// and terminal viewers.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Per-tick frame and event broadcasting
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns every connection. Registration, removal, client counts
// and broadcasts all pass through channels to the Hub's Run goroutine, so the
// client table is never touched from two goroutines. Each connection has a
// read pump, which only services pongs, and a write pump, which batches
// queued messages into one WebSocket frame separated by newlines.
//
// Broadcasts never block the caller. When the hub falls behind, new messages
// are dropped and counted; a viewer catches up on the next frame.
//
// Message Protocol:
//
//	{"type": "frame_update", "session_id": "a1b2", "tick": 120, "frame": {...}}
//	{"type": "parked", "session_id": "a1b2", "tick": 118, "event": {...}}
//	{"type": "session_deleted", "session_id": "a1b2"}
//
// Clients choose a session with the session query parameter.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	scheduler := clock.NewScheduler(yardService, 60, hub)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
