// Package api provides the HTTP REST API for the yard simulation.
//
// The api package implements:
//   - Session management endpoints
//   - Truck operations (spawn, check-out, reassignment)
//   - Manual clock control and auto-spawn settings
//   - Zone listing, lookup and upload
//   - WebSocket upgrade handling
//   - Health and Prometheus metrics endpoints
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"zone_id": "factory_b"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&zone=ID)
//   - GET /api/sessions/{id} - Get a session with its zone
//   - DELETE /api/sessions/{id} - Delete a session
//
// Yard State:
//   - GET /api/sessions/{id}/frame - Slots, moving trucks and parked trucks
//   - GET /api/sessions/{id}/stats - Occupancy statistics
//   - GET /api/sessions/{id}/asns - ASNs not yet dispatched
//
// Truck Operations:
//   - POST /api/sessions/{id}/spawn - Dispatch a truck (service.SpawnRequest)
//   - POST /api/sessions/{id}/checkout - Release a parked container ({"container_number": "..."})
//   - POST /api/sessions/{id}/trucks/{truckId}/reassign - Redirect a truck ({"slot_id": 3})
//
// Clock:
//   - POST /api/sessions/{id}/advance - Step the simulation ({"ticks": 60})
//   - POST /api/sessions/{id}/autospawn - Configure auto-spawn
//   - POST /api/sessions/{id}/pause, /resume - Stop or restart the shared clock for a session
//
// Zones:
//   - GET /api/zones, POST /api/zones, GET /api/zones/{name}
//
// Other:
//   - GET /ws?session={id} - Frame and event stream
//   - GET /health, GET /metrics
//
// Error Handling:
//
// Errors are returned as JSON with a status code derived from the sentinel
// errors of the service and engine packages:
//
//	404  unknown session, zone, truck, container, slot or ASN
//	409  no slot available, duplicate container, slot reserved, catalog exhausted
//	400  malformed body or invalid request
//
//	{"error": "session not found: a1b2"}
//
// Usage:
//
//	server := api.NewServer(yardService, hub, api.WithMetricsHandler(collector.Handler()))
//	http.ListenAndServe(":8080", server)
package api
