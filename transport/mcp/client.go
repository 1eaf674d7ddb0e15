package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
	"github.com/wricardo/mcp-training/yardsim/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Container Yard Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Container Yard Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Dispatch trucks carrying containers from the gate into free yard bays and
dock doors, watch them park, and check containers out again.

AVAILABLE TOOLS:
- create_session: Create a yard session on a zone
- list_sessions / get_session: Inspect sessions
- yard_frame: Trucks in flight, parked trucks and slot occupancy
- yard_stats: Occupancy counts by area, phase and container status
- spawn_truck: Dispatch a truck for the next or a specific ASN
- check_out: Release a parked container's slot
- reassign_slot: Redirect a truck before it turns into its slot
- advance: Step a session's clock by a number of ticks
- auto_spawn: Dispatch trucks periodically
- list_zones / list_asns: Available layouts and shipments
- yard_instructions: Rules of the yard

NOTE: Sessions tick on their own at 60 ticks per second unless paused.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new yard session with optional zone selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"zone_id": map[string]interface{}{
					"type":        "string",
					"description": "Zone to simulate, e.g. factory_a (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active yard sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Yard state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "yard_frame",
		Description: "Show trucks in flight with their phase and target slot, parked trucks, and free slots",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleYardFrame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "yard_stats",
		Description: "Get occupancy statistics for a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleYardStats)

	// Truck operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "spawn_truck",
		Description: "Dispatch a truck from the gate. Without asn_number the next unused ASN is used.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"asn_number": map[string]interface{}{
					"type":        "string",
					"description": "ASN to dispatch (see list_asns)",
				},
				"kinds": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string", "enum": []string{"yard", "dock"}},
					"description": "Only consider these slot kinds",
				},
				"areas": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"top", "bottom", "left", "right", "topYard", "bottomYard"},
					},
					"description": "Only consider these areas",
				},
				"slot_id": map[string]interface{}{
					"type":        "integer",
					"description": "Preferred slot; ignored when taken",
				},
				"trailer_id": map[string]interface{}{
					"type":        "string",
					"description": "Trailer identifier shown on the truck",
				},
				"truck_plate": map[string]interface{}{
					"type":        "string",
					"description": "License plate shown on the truck",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSpawnTruck)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_out",
		Description: "Check a container out of the yard and free its slot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"container_number": map[string]interface{}{
					"type":        "string",
					"description": "Container number of a parked truck",
				},
			},
			Required: []string{"session_id", "container_number"},
		},
	}, c.handleCheckOut)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reassign_slot",
		Description: "Redirect an in-flight truck to another free slot. Only accepted before the truck starts approaching its slot.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"truck_id": map[string]interface{}{
					"type":        "string",
					"description": "Truck ID from yard_frame",
				},
				"slot_id": map[string]interface{}{
					"type":        "integer",
					"description": "New target slot",
				},
			},
			Required: []string{"session_id", "truck_id", "slot_id"},
		},
	}, c.handleReassignSlot)

	// Clock
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: fmt.Sprintf("Advance a session by a number of ticks (max %d per call, 60 ticks = 1 second)", engine.MaxAdvanceTicks),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Ticks to advance (default 60)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "auto_spawn",
		Description: "Enable or disable periodic truck dispatch from the ASN catalog",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"enabled": map[string]interface{}{
					"type":        "boolean",
					"description": "Turn auto-spawn on or off",
				},
				"interval_ticks": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Ticks between spawns (default %d)", service.DefaultAutoSpawnInterval),
				},
			},
			Required: []string{"session_id", "enabled"},
		},
	}, c.handleAutoSpawn)

	// Catalogs
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_zones",
		Description: "List available yard zones",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListZones)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_asns",
		Description: "List shipments not yet dispatched in a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleListASNs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "yard_instructions",
		Description: "Get the rules of the yard: phases, slot selection and reassignment",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleYardInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func stringsArg(args map[string]interface{}, key string) []string {
	raw, _ := args[key].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	zoneID, _ := arguments(request)["zone_id"].(string)

	body := map[string]string{}
	if zoneID != "" {
		body["zone_id"] = zoneID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nZone: %s\n", session.ID, session.ZoneID)
	if session.Statistics != nil {
		result += fmt.Sprintf("Slots: %d\n", session.Statistics.TotalSlots)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions?sort=created&order=asc", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", resp.Count)
	for _, s := range resp.Sessions {
		state := "running"
		if !s.Running {
			state = "paused"
		}
		fmt.Fprintf(&b, "• %s  zone=%s  %s", s.ID, s.ZoneID, state)
		if s.Statistics != nil {
			fmt.Fprintf(&b, "  tick=%d  occupied=%d/%d  in_flight=%d",
				s.Statistics.Tick, s.Statistics.OccupiedSlots, s.Statistics.TotalSlots, s.Statistics.InFlight)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleYardFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var frame engine.Frame
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/frame"), nil, &frame); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFrame(&frame)), nil
}

func (c *Client) handleYardStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var stats engine.Statistics
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/stats"), nil, &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStatistics(&stats)), nil
}

func (c *Client) handleSpawnTruck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	req := service.SpawnRequest{}
	req.ASNNumber, _ = args["asn_number"].(string)
	req.TrailerID, _ = args["trailer_id"].(string)
	req.TruckPlate, _ = args["truck_plate"].(string)
	if slotID, ok := intArg(args, "slot_id"); ok {
		req.SlotID = slotID
	}
	for _, k := range stringsArg(args, "kinds") {
		req.Kinds = append(req.Kinds, layout.Kind(k))
	}
	for _, a := range stringsArg(args, "areas") {
		req.Areas = append(req.Areas, layout.Area(a))
	}

	var result service.SpawnResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/spawn"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSpawnResult(&result)), nil
}

func (c *Client) handleCheckOut(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	container, _ := args["container_number"].(string)

	var result service.CheckOutResult
	body := map[string]string{"container_number": container}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/checkout"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("✓ %s\nSlot %d is free again\n", result.Message, result.SlotID)), nil
}

func (c *Client) handleReassignSlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	truckID, _ := args["truck_id"].(string)
	slotID, _ := intArg(args, "slot_id")

	var result service.ReassignResult
	path := sessionPath(sessionID, "/trucks/"+url.PathEscape(truckID)+"/reassign")
	if err := c.apiCall(ctx, "POST", path, map[string]int{"slot_id": slotID}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mark := "✓"
	if !result.Accepted {
		mark = "✗"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s\n", mark, result.Message)), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	ticks, ok := intArg(args, "ticks")
	if !ok {
		ticks = 60
	}

	var result service.AdvanceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/advance"), map[string]int{"ticks": ticks}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAdvanceResult(&result)), nil
}

func (c *Client) handleAutoSpawn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	opts := service.AutoSpawnOptions{}
	opts.Enabled, _ = args["enabled"].(bool)
	if interval, ok := intArg(args, "interval_ticks"); ok {
		opts.IntervalTicks = interval
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/autospawn"), opts, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !session.AutoSpawn.Enabled {
		return mcp.NewToolResultText(fmt.Sprintf("Auto-spawn disabled for session %s\n", session.ID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Auto-spawn enabled for session %s every %d ticks\n",
		session.ID, session.AutoSpawn.IntervalTicks)), nil
}

func (c *Client) handleListZones(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var zones []service.ZoneInfo
	if err := c.apiCall(ctx, "GET", "/api/zones", nil, &zones); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Zones:\n\n")
	for _, z := range zones {
		fmt.Fprintf(&b, "• %s (zone_id: %s)\n", z.Name, z.ZoneID)
		if z.Description != "" {
			fmt.Fprintf(&b, "  %s\n", z.Description)
		}
		fmt.Fprintf(&b, "  Slots: %d (%s)\n\n", z.TotalSlots, formatAreaCounts(z.AreaCounts))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListASNs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var resp struct {
		Count int       `json:"count"`
		ASNs  []asn.ASN `json:"asns"`
	}
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/asns"), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText("All shipments have been dispatched"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pending Shipments (%d):\n\n", resp.Count)
	for _, a := range resp.ASNs {
		fmt.Fprintf(&b, "• %s  %s %s %s  %s\n", a.ASNNumber, a.Type, a.ContainerNumber, a.ContainerType, a.Status)
		if a.Supplier != "" {
			fmt.Fprintf(&b, "  %s, PO %s, %d items, %d kg\n", a.Supplier, a.PONumber, a.ExpectedItems, a.Weight)
		}
		if a.LocationID != 0 {
			fmt.Fprintf(&b, "  preferred slot %d\n", a.LocationID)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleYardInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Container Yard Simulator - Instructions

OBJECTIVE:
Move containers from the gate into parking bays and dock doors without two
trucks ever claiming the same slot.

THE YARD:
• Slots are laid out along the top, bottom, left and right edges, plus inner
  topYard and bottomYard rows. Each slot is a yard bay or a dock door.
• A warehouse obstacle may sit in the middle. Trucks travel along a safe
  driving line below it.

TRUCK PHASES (always in this order):
  at_gate → entering → moving_to_lane → moving → approaching → backing → parked
• at_gate: waiting for the boom gate
• entering: driving to the safe line
• moving_to_lane: turning into the lane in front of the target slot
• moving: driving along the lane
• approaching: lining up in front of the slot
• backing: reversing into the slot
• parked: the truck leaves the frame and the slot shows as occupied

SLOT SELECTION:
• A spawn reserves the lowest numbered free slot that matches the requested
  kinds and areas. An ASN with a location_id prefers that slot when free.
• Reserved and occupied slots are never handed out twice.
• When nothing matches, spawn_truck fails and nothing changes.

REASSIGNMENT:
• reassign_slot is only accepted while a truck is at_gate, entering,
  moving_to_lane or moving. From approaching on the truck is committed.

CHECK-OUT:
• check_out frees a parked container's slot immediately, even while other
  trucks are still moving.

CLOCK:
• Sessions advance 60 ticks per second while running. Use advance to step a
  session manually; use auto_spawn to keep the gate busy.

WORKFLOW TIPS:
1. create_session with a zone from list_zones
2. spawn_truck a few times, then yard_frame to watch phases change
3. yard_stats to see occupancy by area and container status
4. check_out parked containers to make room`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	state := "running"
	if !session.Running {
		state = "paused"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nZone: %s\nState: %s\nCreated: %s\n",
		session.ID, session.ZoneID, state,
		session.CreatedAt.Format("2006-01-02 15:04:05"))
	if session.AutoSpawn.Enabled {
		fmt.Fprintf(&b, "Auto-spawn: every %d ticks\n", session.AutoSpawn.IntervalTicks)
	}
	if session.Statistics != nil {
		b.WriteString("\n")
		b.WriteString(formatStatistics(session.Statistics))
	}
	return b.String()
}

func formatStatistics(stats *engine.Statistics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tick: %d\n", stats.Tick)
	fmt.Fprintf(&b, "Slots: %d total | %d occupied | %d reserved | %d empty\n",
		stats.TotalSlots, stats.OccupiedSlots, stats.ReservedSlots, stats.EmptySlots)
	fmt.Fprintf(&b, "Trucks in flight: %d", stats.InFlight)
	if stats.StalledTrucks > 0 {
		fmt.Fprintf(&b, " (⚠ %d stalled)", stats.StalledTrucks)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Containers: %d full | %d empty | %d loading | %d unloading\n",
		stats.FullContainers, stats.EmptyContainers, stats.LoadingContainers, stats.UnloadingContainers)

	if len(stats.ByArea) > 0 {
		b.WriteString("\nBy area:\n")
		for _, area := range layout.Areas {
			a, ok := stats.ByArea[area]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %-10s %d/%d occupied, %d reserved\n", area, a.Occupied, a.Total, a.Reserved)
		}
	}

	if len(stats.ByPhase) > 0 {
		b.WriteString("\nBy phase:\n")
		for p := engine.PhaseAtGate; p < engine.PhaseParked; p++ {
			if n := stats.ByPhase[p.String()]; n > 0 {
				fmt.Fprintf(&b, "  %-14s %d\n", p, n)
			}
		}
	}

	return b.String()
}

func formatFrame(frame *engine.Frame) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Zone: %s | Tick: %d\n\n", frame.Zone, frame.Tick)

	if len(frame.Trucks) == 0 {
		b.WriteString("No trucks in flight\n")
	} else {
		fmt.Fprintf(&b, "Trucks in flight (%d):\n", len(frame.Trucks))
		for _, t := range frame.Trucks {
			fmt.Fprintf(&b, "  %s  %s → slot %d  %s  (%.0f,%.0f)",
				t.ID, t.ContainerNumber, t.TargetSlotID, t.Phase, t.X, t.Y)
			if t.Stalled {
				b.WriteString("  ⚠ stalled")
			}
			b.WriteString("\n")
		}
	}

	if len(frame.Parked) > 0 {
		parked := append([]engine.ParkedTruck(nil), frame.Parked...)
		sort.Slice(parked, func(i, j int) bool { return parked[i].SlotID < parked[j].SlotID })

		fmt.Fprintf(&b, "\nParked (%d):\n", len(parked))
		for _, p := range parked {
			fmt.Fprintf(&b, "  slot %-4d %-12s %s  %s\n", p.SlotID, p.ContainerNumber, p.Area, p.ASN.Status)
		}
	}

	var free, reserved []string
	for _, s := range frame.Slots {
		switch {
		case s.Reserved:
			reserved = append(reserved, fmt.Sprint(s.ID))
		case !s.Occupied:
			free = append(free, fmt.Sprint(s.ID))
		}
	}
	fmt.Fprintf(&b, "\nFree slots (%d): %s\n", len(free), strings.Join(free, ", "))
	if len(reserved) > 0 {
		fmt.Fprintf(&b, "Reserved slots: %s\n", strings.Join(reserved, ", "))
	}

	return b.String()
}

func formatSpawnResult(result *service.SpawnResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s\n", result.Message)
	fmt.Fprintf(&b, "Truck: %s\nContainer: %s\nTarget slot: %d\nPhase: %s\n",
		result.TruckID, result.Truck.ContainerNumber, result.SlotID, result.Truck.Phase)
	return b.String()
}

func formatAdvanceResult(result *service.AdvanceResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Advanced %d ticks (now at tick %d)\n", result.Report.Ticks, result.Report.Tick)
	if result.Truncated {
		fmt.Fprintf(&b, "⚠ Requested %d ticks, limited to %d\n", result.Requested, result.Limit)
	}
	fmt.Fprintf(&b, "Trucks in flight: %d\n", result.Report.InFlight)

	for _, p := range result.Report.NewlyParked {
		fmt.Fprintf(&b, "  ✓ %s parked in slot %d\n", p.ContainerNumber, p.SlotID)
	}

	if events := formatEvents(result.Events); events != "" {
		b.WriteString("\nEvents:\n")
		b.WriteString(events)
	}
	return b.String()
}

// formatEvents lists events except phase changes, which are too chatty
func formatEvents(events []engine.Event) string {
	var b strings.Builder
	for _, e := range events {
		if e.Type == engine.EventPhaseChanged {
			continue
		}
		line := e.Message
		if line == "" {
			line = fmt.Sprintf("%s %s slot %d", e.Type, e.ContainerNumber, e.SlotID)
		}
		fmt.Fprintf(&b, "  [%d] %s\n", e.Tick, line)
	}
	return b.String()
}

func formatAreaCounts(counts map[layout.Area]int) string {
	parts := make([]string, 0, len(counts))
	for _, area := range layout.Areas {
		if n := counts[area]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", area, n))
		}
	}
	return strings.Join(parts, ", ")
}
