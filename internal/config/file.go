package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath is consulted when LoadFile is called with an empty path.
const EnvConfigPath = "VOXELS_CONFIG"

// fileConfig mirrors the yaml layout. Zero values mean "keep the default";
// fields where zero is meaningful use pointers to tell unset apart.
type fileConfig struct {
	RenderDistance int  `yaml:"render_distance"`
	FPSLimit       *int `yaml:"fps_limit"`
	MeshWorkers    int  `yaml:"mesh_workers"`
	AtlasBudgetMB  int  `yaml:"atlas_budget_mb"`

	World struct {
		Mode string `yaml:"mode"`
		Seed int64  `yaml:"seed"`
	} `yaml:"world"`

	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
	FlySpeed         float64 `yaml:"fly_speed"`
	Overlay          *bool   `yaml:"overlay"`
}

// LoadFile applies settings from a yaml file over the defaults. An empty path
// falls back to the VOXELS_CONFIG environment variable; if that is empty too,
// the defaults stand and no error is returned. Values pass through the same
// clamped setters the UI uses.
func LoadFile(path string) error {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.RenderDistance != 0 {
		SetRenderDistance(fc.RenderDistance)
	}
	if fc.FPSLimit != nil {
		SetFPSLimit(*fc.FPSLimit)
	}
	if fc.MeshWorkers != 0 {
		SetMeshWorkers(fc.MeshWorkers)
	}
	if fc.AtlasBudgetMB != 0 {
		SetAtlasBudgetMB(fc.AtlasBudgetMB)
	}
	if fc.World.Mode != "" {
		SetWorldMode(fc.World.Mode)
	}
	if fc.World.Seed != 0 {
		SetWorldSeed(fc.World.Seed)
	}
	if fc.MouseSensitivity != 0 {
		SetMouseSensitivity(fc.MouseSensitivity)
	}
	if fc.FlySpeed != 0 {
		SetFlySpeed(fc.FlySpeed)
	}
	if fc.Overlay != nil {
		SetShowOverlay(*fc.Overlay)
	}
	return nil
}
