// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"image/color"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
)

// Config holds all viewer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Level   LevelConfig   `yaml:"level"`
	View    ViewConfig    `yaml:"view"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds the per-frame pipeline settings. Enumerations are
// stored by name so config files stay readable.
type RenderConfig struct {
	Shading            string     `yaml:"shading"`
	PerspectiveCorrect bool       `yaml:"perspective_correct"`
	VertexJitter       bool       `yaml:"vertex_jitter"`
	SnapBits           uint       `yaml:"snap_bits"`
	DepthTest          bool       `yaml:"depth_test"`
	DepthFunc          string     `yaml:"depth_func"`
	FrontFace          string     `yaml:"front_face"`
	PainterSort        bool       `yaml:"painter_sort"`
	Dithering          bool       `yaml:"dithering"`
	PSXModulation      bool       `yaml:"psx_modulation"`
	Lighting           bool       `yaml:"lighting"`
	LightDir           [3]float64 `yaml:"light_dir,flow"`
	Ambient            float64    `yaml:"ambient"`
	Background         [3]uint8   `yaml:"background,flow"`
	BackfaceWireframe  bool       `yaml:"backface_wireframe"`
	ShowPortals        bool       `yaml:"show_portals"`
	ShowBounds         bool       `yaml:"show_bounds"`
	MaxPortalDepth     int        `yaml:"max_portal_depth"`
	OutsideRoom        string     `yaml:"outside_room"`
}

// LevelConfig selects the level to view. An empty Path shows the built-in
// test level.
type LevelConfig struct {
	Path        string `yaml:"path"`
	TextureDir  string `yaml:"texture_dir"`
	TextureSize int    `yaml:"texture_size"`
}

// ViewConfig holds presentation and camera movement settings.
type ViewConfig struct {
	Window    bool    `yaml:"window"` // Open a desktop window instead of drawing in the terminal
	Scale     int     `yaml:"scale"`  // Window size as a multiple of 320x240
	FPS       int     `yaml:"fps"`
	MoveSpeed float64 `yaml:"move_speed"` // World units per second
	TurnSpeed float64 `yaml:"turn_speed"` // Radians per second
	FOV       float64 `yaml:"fov"`        // Vertical field of view in degrees
	Near      float64 `yaml:"near"`       // Near clipping distance
	Far       float64 `yaml:"far"`        // Far clipping distance
	Snapshot  string  `yaml:"-"`          // Render one frame to this PNG and exit
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config matching render.DefaultConfig and the built-in
// test level.
func Default() *Config {
	rc := render.DefaultConfig()
	return &Config{
		Render: RenderConfig{
			Shading:            rc.Shading.String(),
			PerspectiveCorrect: rc.PerspectiveCorrect,
			VertexJitter:       rc.VertexJitter,
			SnapBits:           rc.SnapBits,
			DepthTest:          rc.DepthTest,
			DepthFunc:          rc.DepthFunc.String(),
			FrontFace:          rc.FrontFace.String(),
			PainterSort:        rc.PainterSort,
			Dithering:          rc.Dithering,
			PSXModulation:      rc.PSXModulation,
			Lighting:           rc.Lighting,
			LightDir:           [3]float64{rc.LightDir.X, rc.LightDir.Y, rc.LightDir.Z},
			Ambient:            rc.Ambient,
			Background:         [3]uint8{rc.Background.R, rc.Background.G, rc.Background.B},
			BackfaceWireframe:  rc.BackfaceWireframe,
			ShowPortals:        rc.ShowPortals,
			ShowBounds:         rc.ShowBounds,
			MaxPortalDepth:     rc.MaxPortalDepth,
			OutsideRoom:        rc.OutsideRoom.String(),
		},
		View: ViewConfig{
			Scale:     3,
			FPS:       30,
			MoveSpeed: 3,
			TurnSpeed: 2,
			FOV:       60,
			Near:      0.1,
			Far:       200,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// RenderConfig converts the render section into the pipeline's Config and
// validates it.
func (c *Config) RenderConfig() (render.Config, error) {
	rc := render.DefaultConfig()
	r := c.Render

	var err error
	if rc.Shading, err = render.ParseShadingMode(r.Shading); err != nil {
		return rc, fmt.Errorf("render.shading: %w", err)
	}
	if rc.DepthFunc, err = render.ParseDepthFunc(r.DepthFunc); err != nil {
		return rc, fmt.Errorf("render.depth_func: %w", err)
	}
	if rc.FrontFace, err = render.ParseWinding(r.FrontFace); err != nil {
		return rc, fmt.Errorf("render.front_face: %w", err)
	}
	if rc.OutsideRoom, err = render.ParseOutsidePolicy(r.OutsideRoom); err != nil {
		return rc, fmt.Errorf("render.outside_room: %w", err)
	}

	rc.PerspectiveCorrect = r.PerspectiveCorrect
	rc.VertexJitter = r.VertexJitter
	rc.SnapBits = r.SnapBits
	rc.DepthTest = r.DepthTest
	rc.PainterSort = r.PainterSort
	rc.Dithering = r.Dithering
	rc.PSXModulation = r.PSXModulation
	rc.Lighting = r.Lighting
	rc.LightDir = math3d.V3(r.LightDir[0], r.LightDir[1], r.LightDir[2])
	if rc.LightDir.LenSq() > 0 {
		rc.LightDir = rc.LightDir.Normalize()
	}
	rc.Ambient = r.Ambient
	rc.Background = color.RGBA{r.Background[0], r.Background[1], r.Background[2], 255}
	rc.BackfaceWireframe = r.BackfaceWireframe
	rc.ShowPortals = r.ShowPortals
	rc.ShowBounds = r.ShowBounds
	rc.MaxPortalDepth = r.MaxPortalDepth

	if err := rc.Validate(); err != nil {
		return rc, fmt.Errorf("render: %w", err)
	}
	return rc, nil
}
