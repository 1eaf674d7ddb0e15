// Package config provides zone configuration management for the yard
// simulation.
//
// The config package handles:
//   - Loading zone descriptors from JSON files
//   - Validation through engine.ValidateYardConfig
//   - Default zone management
//   - Zone discovery and listing
//
// Configuration Format:
//
// A zone file is an engine.YardConfig: the canvas size, the gate, the safe
// driving line, an optional warehouse obstacle, a list of bay areas and an
// optional motion block. Each area gives an origin, a slot size, a gap and a
// count; slot IDs are generated from the areas in order.
//
//	{
//	  "name": "factory_b",
//	  "canvas": {"width": 1600, "height": 900},
//	  "gate": {"x": 20, "y": 880},
//	  "safe_zone_y": 520,
//	  "obstacle": {"x": 650, "y": 380, "width": 300, "height": 100},
//	  "areas": [
//	    {"area": "top", "origin": {"x": 50, "y": 80}, "gap": 10, "count": 5},
//	    {"area": "bottom", "origin": {"x": 50, "y": 620}, "gap": 10, "count": 3, "first_id": 415}
//	  ],
//	  "motion": {"speed": 2}
//	}
//
// Built-in Zones:
//
// factory_a, factory_b, factory_c and perimeter are always available. A file
// with the same name in the config directory replaces the built-in one.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	zone, err := manager.LoadConfig("factory_b")
//	zones, err := manager.ListConfigs()
package config
