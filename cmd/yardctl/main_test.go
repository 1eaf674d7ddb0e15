package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"yardctl"}, args...))
	return out.String(), err
}

func TestApp_Commands(t *testing.T) {
	app := newApp(&bytes.Buffer{})

	expected := map[string]bool{"validate": false, "analyze": false, "simulate": false, "view": false}
	for _, cmd := range app.Commands {
		if _, ok := expected[cmd.Name]; ok {
			expected[cmd.Name] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("Expected command %s", name)
		}
	}
}

func TestApp_Validate(t *testing.T) {
	out, err := runApp(t, "validate", "../../configs")
	if err != nil {
		t.Fatalf("Expected no error, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "4/4 zone files valid") {
		t.Errorf("Expected all shipped zones to be valid, got:\n%s", out)
	}
}

func TestApp_AnalyzeBuiltin(t *testing.T) {
	out, err := runApp(t, "analyze", "--builtin")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "=== Analyzing built-in factory_a ===") {
		t.Errorf("Expected factory_a section, got:\n%s", out)
	}
}

func TestApp_Simulate(t *testing.T) {
	out, err := runApp(t, "simulate", "--config-dir", t.TempDir(), "--zone", "factory_c", "--ticks", "600", "--quiet")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "Simulating factory_c (12 slots) for 600 ticks") {
		t.Errorf("Expected header, got:\n%s", out)
	}
	if !strings.Contains(out, "After 600 ticks") {
		t.Errorf("Expected summary, got:\n%s", out)
	}
}

func TestApp_ViewRequiresSession(t *testing.T) {
	_, err := runApp(t, "view", "--server", "http://localhost:1")
	if err == nil || !strings.Contains(err.Error(), "--session") {
		t.Errorf("Expected --session error, got %v", err)
	}
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("CONFIG_DIR", "")
	if got := defaultConfigDir(); got != "configs" {
		t.Errorf("Expected configs, got %s", got)
	}
	t.Setenv("CONFIG_DIR", "/tmp/zones")
	if got := defaultConfigDir(); got != "/tmp/zones" {
		t.Errorf("Expected /tmp/zones, got %s", got)
	}
}
