// Package service provides the business logic layer for the yard simulation.
//
// The service package implements:
//   - Multi-session yard management, one simulation per session
//   - Zone configuration listing, loading and saving
//   - Truck dispatch, check-out and reassignment
//   - Manual stepping and clock-driven ticking with auto-spawn
//
// Core Interfaces:
//
// YardService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages zone configuration loading and validation.
// Metrics receives spawn, park, check-out and stall outcomes.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP) and the
// engine. Each session owns its own engine.Simulation and asn.Dispenser, so
// zones run independently. Errors are wrapped with ErrSessionNotFound,
// ErrZoneNotFound or ErrInvalidRequest, or pass through the engine sentinels
// such as engine.ErrNoSlotAvailable, so callers can map them with errors.Is.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	yard := service.NewYardService(sessionMgr, configMgr)
//
//	info, err := yard.CreateSession(ctx, "factory_a")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := yard.Spawn(ctx, info.ID, service.SpawnRequest{})
//	if errors.Is(err, engine.ErrNoSlotAvailable) {
//		// yard full, try later
//	}
//	yard.Advance(ctx, info.ID, 600)
//
// Clock:
//
// TickAll advances every running session by one tick and returns a
// TickUpdate per session with its drained events and a fresh frame. The
// clock package calls it at a fixed rate and hands the updates to the
// WebSocket hub.
package service
