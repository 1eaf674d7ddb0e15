package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/yardsim/game/clock"
	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/service"
	"github.com/wricardo/mcp-training/yardsim/render/chime"
	"github.com/wricardo/mcp-training/yardsim/render/terminal"
	yardws "github.com/wricardo/mcp-training/yardsim/transport/websocket"
)

var (
	errNothingParked  = errors.New("no parked trucks")
	errSessionDeleted = errors.New("session deleted")
)

type viewOptions struct {
	ConfigDir string
	Zone      string
	TickRate  int
	Interval  int
	Server    string
	SessionID string
	Sound     bool
	Timeout   time.Duration
}

// controller is what the viewer's keys act on
type controller interface {
	Spawn(ctx context.Context) error
	TogglePause(ctx context.Context) error
	CheckOutOldest(ctx context.Context) error
}

func runView(ctx context.Context, opts viewOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var player *chime.Player
	if opts.Sound {
		player = chime.NewPlayer(0.3)
		if err := player.Init(); err != nil {
			// Non-fatal, the viewer works without sound
			log.Printf("Audio initialization failed: %v", err)
		}
		defer player.Close()
	}
	notify := func(events []engine.Event) {
		if player != nil {
			player.Notify(events)
		}
	}

	frames := make(chan *engine.Frame, 1)
	var ctrl controller

	if opts.Server != "" {
		remote := newRemoteController(opts.Server, opts.SessionID, opts.Timeout)
		target, err := wsURL(opts.Server, opts.SessionID)
		if err != nil {
			return err
		}
		conn, err := dial(ctx, target, opts.Timeout)
		if err != nil {
			return err
		}
		followErr := make(chan error, 1)
		go func() {
			followErr <- follow(ctx, conn, frames, notify)
			cancel()
		}()
		defer func() {
			cancel()
			if err := <-followErr; err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[VIEW] %v", err)
			}
		}()
		ctrl = remote
	} else {
		local, scheduler, err := startLocal(ctx, opts, frames, notify)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
		ctrl = local
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	// the screen owns the terminal until Fini
	prev := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(prev)

	return terminal.Run(ctx, screen, frames, keyHandler(ctx, ctrl))
}

func keyHandler(ctx context.Context, ctrl controller) func(rune) {
	return func(r rune) {
		var err error
		switch r {
		case 's':
			err = ctrl.Spawn(ctx)
		case 'p':
			err = ctrl.TogglePause(ctx)
		case 'c':
			err = ctrl.CheckOutOldest(ctx)
		default:
			return
		}
		if err != nil {
			log.Printf("[VIEW] key %c: %v", r, err)
		}
	}
}

// offerFrame hands the newest frame to the renderer, replacing one it has
// not drawn yet
func offerFrame(frames chan *engine.Frame, frame *engine.Frame) {
	select {
	case frames <- frame:
		return
	default:
	}
	select {
	case <-frames:
	default:
	}
	select {
	case frames <- frame:
	default:
	}
}

// oldestParked returns the container that has been parked the longest
func oldestParked(frame *engine.Frame) (string, bool) {
	if frame == nil || len(frame.Parked) == 0 {
		return "", false
	}
	oldest := frame.Parked[0]
	for _, p := range frame.Parked[1:] {
		if p.ParkedAt < oldest.ParkedAt || (p.ParkedAt == oldest.ParkedAt && p.SlotID < oldest.SlotID) {
			oldest = p
		}
	}
	return oldest.ContainerNumber, true
}

// localController drives a session in this process
type localController struct {
	svc       service.YardService
	sessionID string
}

// startLocal creates a session and ticks it on its own scheduler
func startLocal(ctx context.Context, opts viewOptions, frames chan *engine.Frame, notify func([]engine.Event)) (*localController, *clock.Scheduler, error) {
	svc, err := newLocalService(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	info, err := svc.CreateSession(ctx, opts.Zone)
	if err != nil {
		return nil, nil, err
	}
	if opts.Interval > 0 {
		if _, err := svc.SetAutoSpawn(ctx, info.ID, service.AutoSpawnOptions{Enabled: true, IntervalTicks: opts.Interval}); err != nil {
			return nil, nil, err
		}
	}

	sink := clock.SinkFunc(func(updates []*service.TickUpdate) {
		for _, u := range updates {
			if u.SessionID != info.ID {
				continue
			}
			notify(u.Events)
			offerFrame(frames, u.Frame)
		}
	})
	scheduler := clock.NewScheduler(svc, opts.TickRate, sink)
	scheduler.Start(ctx)

	return &localController{svc: svc, sessionID: info.ID}, scheduler, nil
}

func (c *localController) Spawn(ctx context.Context) error {
	_, err := c.svc.Spawn(ctx, c.sessionID, service.SpawnRequest{})
	return err
}

func (c *localController) TogglePause(ctx context.Context) error {
	info, err := c.svc.GetSession(ctx, c.sessionID)
	if err != nil {
		return err
	}
	_, err = c.svc.SetRunning(ctx, c.sessionID, !info.Running)
	return err
}

func (c *localController) CheckOutOldest(ctx context.Context) error {
	frame, err := c.svc.GetFrame(ctx, c.sessionID)
	if err != nil {
		return err
	}
	container, ok := oldestParked(frame)
	if !ok {
		return errNothingParked
	}
	_, err = c.svc.CheckOut(ctx, c.sessionID, container)
	return err
}

// remoteController drives a session through the REST API
type remoteController struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

func newRemoteController(baseURL, sessionID string, timeout time.Duration) *remoteController {
	return &remoteController{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *remoteController) call(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + "/api/sessions/" + url.PathEscape(c.sessionID) + path
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
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
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}
	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *remoteController) Spawn(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/spawn", service.SpawnRequest{}, nil)
}

func (c *remoteController) TogglePause(ctx context.Context) error {
	var info service.SessionInfo
	if err := c.call(ctx, http.MethodGet, "", nil, &info); err != nil {
		return err
	}
	path := "/pause"
	if !info.Running {
		path = "/resume"
	}
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

func (c *remoteController) CheckOutOldest(ctx context.Context) error {
	var frame engine.Frame
	if err := c.call(ctx, http.MethodGet, "/frame", nil, &frame); err != nil {
		return err
	}
	container, ok := oldestParked(&frame)
	if !ok {
		return errNothingParked
	}
	return c.call(ctx, http.MethodPost, "/checkout", map[string]string{"container_number": container}, nil)
}

// wsURL turns a server address into the stream URL of a session
func wsURL(server, sessionID string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server %q: %w", server, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server %q: unsupported scheme %q", server, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()
	return u.String(), nil
}

func dial(ctx context.Context, target string, timeout time.Duration) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect %s: %s: %w", target, resp.Status, err)
		}
		return nil, fmt.Errorf("connect %s: %w", target, err)
	}
	return conn, nil
}

// follow reads the session stream until ctx is done, the connection drops
// or the session is deleted. Several messages may share one websocket frame,
// separated by newlines.
func follow(ctx context.Context, conn *websocket.Conn, frames chan *engine.Frame, onEvents func([]engine.Event)) error {
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var events []engine.Event
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var msg yardws.Message
			if err := json.Unmarshal(line, &msg); err != nil {
				return fmt.Errorf("bad message: %w", err)
			}
			switch {
			case msg.Type == yardws.TypeSessionDeleted:
				return errSessionDeleted
			case msg.Type == yardws.TypeFrameUpdate && msg.Frame != nil:
				offerFrame(frames, msg.Frame)
			case msg.Event != nil:
				events = append(events, *msg.Event)
			}
		}
		if len(events) > 0 {
			onEvents(events)
		}
	}
}
