package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/yardsim/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Container Yard Simulator"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	services, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if services.Yard == nil {
		t.Fatal("Expected yard service to be initialized")
	}
	if services.Sessions == nil || services.Configs == nil || services.Metrics == nil {
		t.Fatalf("Expected all services to be initialized, got %+v", services)
	}

	zones, err := services.Yard.ListZones(context.Background())
	if err != nil {
		t.Fatalf("Expected no error listing zones, got %v", err)
	}
	if len(zones) == 0 {
		t.Error("Expected at least one zone")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "/non/existent/path"
	defer func() { *configDir = originalConfigDir }()

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}

	if *tickRate != 60 {
		t.Errorf("Expected default tick rate 60, got %d", *tickRate)
	}

	if *sessionTTL != 24*time.Hour {
		t.Errorf("Expected default session TTL 24h, got %v", *sessionTTL)
	}
}

func TestGetConfigDirDefault(t *testing.T) {
	t.Setenv("CONFIG_DIR", "")
	if got := getConfigDirDefault(); got != "configs" {
		t.Errorf("Expected configs, got %s", got)
	}

	t.Setenv("CONFIG_DIR", "/srv/zones")
	if got := getConfigDirDefault(); got != "/srv/zones" {
		t.Errorf("Expected /srv/zones, got %s", got)
	}
}

func TestNgrokSettings(t *testing.T) {
	originalEnabled, originalAuth := *ngrokEnabled, *ngrokAuth
	defer func() { *ngrokEnabled, *ngrokAuth = originalEnabled, originalAuth }()

	*ngrokEnabled = false
	*ngrokAuth = ""
	t.Setenv("NGROK_ENABLED", "")
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "")

	if ngrokShouldRun() {
		t.Error("Expected ngrok disabled by default")
	}
	t.Setenv("NGROK_ENABLED", "1")
	if !ngrokShouldRun() {
		t.Error("Expected NGROK_ENABLED=1 to enable ngrok")
	}

	if token := ngrokAuthToken(); token != "" {
		t.Errorf("Expected no token, got %q", token)
	}
	t.Setenv("NGROK_AUTH_TOKEN", "legacy")
	if token := ngrokAuthToken(); token != "legacy" {
		t.Errorf("Expected legacy token, got %q", token)
	}
	t.Setenv("NGROK_AUTHTOKEN", "env")
	if token := ngrokAuthToken(); token != "env" {
		t.Errorf("Expected env token, got %q", token)
	}
	*ngrokAuth = "flag"
	if token := ngrokAuthToken(); token != "flag" {
		t.Errorf("Expected flag token to win, got %q", token)
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://127.0.0.1:1"))

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", rec.Code)
		}
	})

	t.Run("answers ping", func(t *testing.T) {
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json, got %s", ct)
		}
		if !strings.Contains(rec.Body.String(), `"jsonrpc":"2.0"`) {
			t.Errorf("Expected a JSON-RPC response, got %s", rec.Body.String())
		}
	})
}

func TestStartInternalServer(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = t.TempDir()
	defer func() { *configDir = originalConfigDir }()

	services, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	baseURL, httpServer, err := startInternalServer(ctx, services)
	if err != nil {
		t.Fatalf("Failed to start internal server: %v", err)
	}
	defer httpServer.Close()

	if !externalAPIAvailable(baseURL) {
		t.Fatalf("Expected health check to pass at %s", baseURL)
	}

	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Expected metrics endpoint, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected metrics status 200, got %d", resp.StatusCode)
	}

	// the clock drives sessions created through the service
	info, err := services.Yard.CreateSession(ctx, "factory_b")
	if err != nil {
		t.Fatalf("Expected session, got %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		frame, err := services.Yard.GetFrame(ctx, info.ID)
		if err != nil {
			t.Fatalf("Expected frame, got %v", err)
		}
		if frame.Tick > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected the clock to advance the session")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestExternalAPIAvailable_Unreachable(t *testing.T) {
	if externalAPIAvailable("http://127.0.0.1:1") {
		t.Error("Expected unreachable API to report unavailable")
	}
}
