// bonnie - PS1-style room viewer
// Walk through a portal-connected level in the terminal or a desktop window.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Arrows      - Turn and look up/down
//	Space/C     - Move up/down
//	1/2/3       - Shading: none, flat, gouraud
//	P           - Toggle perspective-correct texturing
//	J           - Toggle vertex jitter
//	Z           - Toggle depth buffer (painter's order when off)
//	B           - Toggle dithering
//	L           - Toggle directional lighting
//	O           - Toggle portal outlines
//	N           - Toggle room bounds
//	X           - Toggle back-face wireframe
//	R           - Return to spawn
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/EBonura/bonnie-engine/internal/config"
	"github.com/EBonura/bonnie-engine/internal/logger"
	"github.com/EBonura/bonnie-engine/pkg/level"
	"github.com/EBonura/bonnie-engine/pkg/render"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "bonnie - PS1-style room viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: bonnie [options] [level.yaml|room.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a level the built-in test level is shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The terminal viewer owns the screen, so it only logs to a file.
	console := cfg.View.Window || cfg.View.Snapshot != ""
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, console); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("bonnie failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}
	lvl, err := loadLevel(cfg.Level)
	if err != nil {
		return err
	}
	logger.Sugar.Debugf("render config: %+v", rc)

	app := newApp(lvl, rc, cfg.View)
	switch {
	case cfg.View.Snapshot != "":
		return app.snapshot(cfg.View.Snapshot, cfg.View.Scale)
	case cfg.View.Window:
		return runWindow(app, cfg.View)
	default:
		return runTerminal(app, cfg.View)
	}
}

// loadLevel reads a YAML level, imports a single glTF room, or builds the
// test level when no path is given.
func loadLevel(lc config.LevelConfig) (*level.Level, error) {
	if lc.Path == "" {
		logger.Info("no level given, using the test level")
		return level.TestLevel(), nil
	}

	switch strings.ToLower(filepath.Ext(lc.Path)) {
	case ".glb", ".gltf":
		return importLevel(lc)
	default:
		ld := &level.Loader{
			TextureDir:  lc.TextureDir,
			TextureSize: lc.TextureSize,
			Logger:      logger.Named("level"),
		}
		return ld.Load(lc.Path)
	}
}

func importLevel(lc config.LevelConfig) (*level.Level, error) {
	name := strings.TrimSuffix(filepath.Base(lc.Path), filepath.Ext(lc.Path))
	lvl := level.New(name)
	id, err := level.ImportRoomGLB(lvl, lc.Path, level.ImportOptions{TextureSize: lc.TextureSize})
	if err != nil {
		return nil, err
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("import %s: %w", lc.Path, err)
	}

	// Stand at eye height above the middle of the floor.
	b := lvl.Room(id).WorldBounds()
	c := b.Center()
	c.Y = b.Min.Y + min(1.6, (b.Max.Y-b.Min.Y)/2)
	lvl.Spawn = level.Spawn{Position: c, Room: id}

	logger.Info("room imported",
		zap.String("path", lc.Path),
		zap.Int("faces", lvl.FaceCount()),
		zap.Int("textures", lvl.Textures.Len()),
	)
	return lvl, nil
}

// cameraFor places a fresh camera at the level's spawn point with the
// projection from view. Unset or inconsistent values keep the defaults.
func cameraFor(lvl *level.Level, view config.ViewConfig) *render.Camera {
	cam := render.NewCamera()
	if view.FOV > 0 && view.FOV < 180 {
		cam.SetFOV(view.FOV * math.Pi / 180)
	}
	if view.Near > 0 && view.Far > view.Near {
		cam.SetClipPlanes(view.Near, view.Far)
	}
	cam.SetPosition(lvl.Spawn.Position)
	cam.SetRotation(0, lvl.Spawn.Yaw, 0)
	if lvl.Spawn.Room != level.Exterior {
		cam.Room = int(lvl.Spawn.Room)
	}
	return cam
}
