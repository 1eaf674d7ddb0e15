// Package mcp provides a Model Context Protocol server for the yard
// simulation.
//
// The mcp package implements:
//   - MCP tools for AI agent integration
//   - A thin client that proxies every tool to the REST API
//   - Plain-text formatting of frames, statistics and results
//
// MCP Tools:
//
//   - create_session, list_sessions, get_session: Session management
//   - yard_frame: Trucks in flight, parked trucks and free slots
//   - yard_stats: Occupancy by area, phase and container status
//   - spawn_truck: Dispatch a truck for an ASN
//   - check_out: Release a parked container
//   - reassign_slot: Redirect a truck before it turns into its slot
//   - advance, auto_spawn: Clock control
//   - list_zones, list_asns: Catalogs
//   - yard_instructions: Rules of the yard
//
// Transport Modes:
//
// The server runs over stdio for local MCP clients, or behind the /mcp HTTP
// endpoint of the main server. Either way it reaches the simulation through
// the REST API, so tool calls and browser viewers see the same sessions.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
