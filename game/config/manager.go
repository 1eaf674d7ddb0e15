package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/layout"
	"github.com/wricardo/mcp-training/yardsim/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultZone is used for sessions created without a zone name
const DefaultZone = "factory_a"

// Manager handles zone configuration loading and caching. Files in the
// config directory shadow the built-in zones of the same name.
type Manager struct {
	configDir     string
	defaultConfig *engine.YardConfig
	configs       map[string]*engine.YardConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.YardConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a zone by name
func (m *Manager) LoadConfig(name string) (*engine.YardConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if !validName(name) {
		return nil, fmt.Errorf("%w: bad zone name %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

// readConfig reads name from disk, falling back to the built-in zones
func (m *Manager) readConfig(name string) (*engine.YardConfig, error) {
	configPath := filepath.Join(m.configDir, name+".json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if zone, ok := layout.BuiltinZones()[name]; ok {
			return engine.NewYardConfig(zone), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	var config engine.YardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, configPath, err)
	}

	if err := engine.ValidateYardConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// ListConfigs returns information about every loadable zone, sorted by id
func (m *Manager) ListConfigs() ([]*service.ZoneInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	seen := make(map[string]bool)
	var zones []*service.ZoneInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(name)
		if err != nil {
			fmt.Printf("Warning: skipping zone %s: %v\n", entry.Name(), err)
			continue
		}

		seen[name] = true
		zones = append(zones, zoneInfo(entry.Name(), name, config))
	}

	for name, zone := range layout.BuiltinZones() {
		if seen[name] {
			continue
		}
		zones = append(zones, zoneInfo("", name, engine.NewYardConfig(zone)))
	}

	sort.Slice(zones, func(i, j int) bool {
		return zones[i].ZoneID < zones[j].ZoneID
	})
	return zones, nil
}

func zoneInfo(filename, id string, config *engine.YardConfig) *service.ZoneInfo {
	counts := make(map[layout.Area]int)
	total := 0
	for _, spec := range config.Areas {
		if spec.Count <= 0 {
			continue
		}
		counts[spec.Area] += spec.Count
		total += spec.Count
	}

	return &service.ZoneInfo{
		Filename:    filename,
		ZoneID:      id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		TotalSlots:  total,
		AreaCounts:  counts,
	}
}

// ReloadConfig rereads one zone from disk, replacing the cached copy
func (m *Manager) ReloadConfig(name string) error {
	name = strings.TrimSuffix(name, ".json")

	m.mu.Lock()
	delete(m.configs, name)
	m.mu.Unlock()

	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.defaultConfig != nil && m.defaultConfig.Name == config.Name {
		m.defaultConfig = config
	}
	m.mu.Unlock()
	return nil
}

// ValidateConfig checks a zone without saving it
func (m *Manager) ValidateConfig(config *engine.YardConfig) error {
	if err := engine.ValidateYardConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Count returns the number of cached zones
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// GetDefault returns the default zone
func (m *Manager) GetDefault() *engine.YardConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default zone by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached zones so the next load rereads the files
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.YardConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads DefaultZone, which always resolves through the
// built-in fallback unless a broken file shadows it
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultZone)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a zone and writes it to disk
func (m *Manager) SaveConfig(name string, config *engine.YardConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if !validName(name) {
		return fmt.Errorf("%w: bad zone name %q", ErrInvalidConfig, name)
	}

	if err := m.ValidateConfig(config); err != nil {
		return err
	}

	configPath := filepath.Join(m.configDir, name+".json")

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

// validName rejects names that would escape the config directory
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
