package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
)

func createTestConfigDir(t *testing.T) string {
	return t.TempDir()
}

func createValidConfig() *engine.YardConfig {
	zone := layout.FactoryB()
	zone.Name = "test_yard"
	zone.Description = "Test yard"
	return engine.NewYardConfig(zone)
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.YardConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)

		defaultConfig := createValidConfig()
		defaultConfig.Name = "factory_a"
		defaultConfig.Description = "Overridden default"
		writeConfigFile(t, dir, DefaultZone, defaultConfig)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault(); got.Description != "Overridden default" {
			t.Errorf("Expected file to shadow the built-in default, got %q", got.Description)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		manager, err := NewManager(createTestConfigDir(t))
		if err != nil {
			t.Fatalf("NewManager should succeed even without config files, got error: %v", err)
		}

		defaultConfig := manager.GetDefault()
		if defaultConfig == nil || defaultConfig.Name != DefaultZone {
			t.Errorf("Expected built-in %s as default, got %+v", DefaultZone, defaultConfig)
		}
	})

	t.Run("broken default config", func(t *testing.T) {
		dir := createTestConfigDir(t)
		os.WriteFile(filepath.Join(dir, DefaultZone+".json"), []byte("{not json"), 0644)

		if _, err := NewManager(dir); err == nil {
			t.Error("Expected error when the default zone file is broken")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "test_yard", createValidConfig())

	invalid := createValidConfig()
	invalid.SafeZoneY = 420 // through the obstacle
	writeConfigFile(t, dir, "invalid", invalid)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name     string
		zone     string
		wantErr  error
		wantName string
	}{
		{"file zone", "test_yard", nil, "test_yard"},
		{"with json extension", "test_yard.json", nil, "test_yard"},
		{"built-in fallback", "perimeter", nil, "perimeter"},
		{"unknown zone", "nonexistent", ErrConfigNotFound, ""},
		{"invalid zone", "invalid", ErrInvalidConfig, ""},
		{"path escape", "../etc/passwd", ErrConfigNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := manager.LoadConfig(tt.zone)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to load %s: %v", tt.zone, err)
			}
			if config.Name != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, config.Name)
			}
		})
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "test_yard", createValidConfig())
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	zones, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	// 4 built-ins plus the file zone; the broken file is skipped
	if len(zones) != 5 {
		t.Fatalf("Expected 5 zones, got %d", len(zones))
	}

	ids := make([]string, len(zones))
	for i, z := range zones {
		ids[i] = z.ZoneID
	}
	want := []string{"factory_a", "factory_b", "factory_c", "perimeter", "test_yard"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Expected zones %v, got %v", want, ids)
			break
		}
	}

	for _, z := range zones {
		switch z.ZoneID {
		case "test_yard":
			if z.Filename != "test_yard.json" || z.TotalSlots != 8 {
				t.Errorf("Unexpected file zone info %+v", z)
			}
		case "perimeter":
			if z.Filename != "" {
				t.Errorf("Expected built-in zone without filename, got %s", z.Filename)
			}
			if z.AreaCounts[layout.Left] != 3 || z.TotalSlots != 18 {
				t.Errorf("Unexpected perimeter counts %+v", z)
			}
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	config := createValidConfig()
	config.Motion = &engine.MotionConfig{Speed: 4}
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json on disk: %v", err)
	}

	loaded, err := manager.LoadConfig("saved")
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.ResolvedMotion().Speed != 4 {
		t.Errorf("Expected speed 4, got %v", loaded.ResolvedMotion().Speed)
	}

	bad := createValidConfig()
	bad.Areas[0].Area = "roof"
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../outside", config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for path escape, got %v", err)
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	config := createValidConfig()
	config.Description = "before"
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.Description != "before" {
		t.Errorf("Expected initial description, got %q", loaded.Description)
	}

	config.Description = "after"
	writeConfigFile(t, dir, "changeable", config)

	// Cached until reloaded
	cached, _ := manager.LoadConfig("changeable")
	if cached.Description != "before" {
		t.Errorf("Expected cached description, got %q", cached.Description)
	}

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.Description != "after" {
		t.Errorf("Expected reloaded description, got %q", reloaded.Description)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "test_yard", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	manager.LoadConfig("test_yard")
	manager.LoadConfig("perimeter")

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected only the default zone cached, got %d", manager.Count())
	}
	if manager.GetDefault() == nil {
		t.Error("Expected default zone after refresh")
	}
}

func TestManager_SetDefault(t *testing.T) {
	manager, err := NewManager(createTestConfigDir(t))
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.SetDefault("perimeter"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "perimeter" {
		t.Errorf("Expected perimeter default, got %s", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "zone" + string(rune('0'+i))
		writeConfigFile(t, dir, config.Name, config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := "zone" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(name); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// 5 file zones plus the default
	if manager.Count() != 6 {
		t.Errorf("Expected 6 configs in cache, got %d", manager.Count())
	}
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, "test_yard", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	first, _ := manager.LoadConfig("test_yard")
	for i := 0; i < 10; i++ {
		config, err := manager.LoadConfig("test_yard")
		if err != nil {
			t.Fatalf("Failed to load config on iteration %d: %v", i, err)
		}
		if config != first {
			t.Errorf("Expected cached pointer on iteration %d", i)
		}
	}

	// The default zone and the test zone
	if manager.Count() != 2 {
		t.Errorf("Expected 2 cached configs, got %d", manager.Count())
	}
}
