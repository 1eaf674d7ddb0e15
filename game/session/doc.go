// Package session provides session management for the yard simulation.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager implements service.SessionManager. Each session it creates owns an
// engine.Simulation built from a zone and an asn.Dispenser over the
// manager's catalog, so sessions never share trucks, slots or shipments.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. Generated IDs are retried on collision.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", engine.NewYardConfig(layout.FactoryA()))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
//	// Drop sessions idle for an hour
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
