package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/EBonura/bonnie-engine/internal/config"
	"github.com/EBonura/bonnie-engine/internal/logger"
	"github.com/EBonura/bonnie-engine/pkg/engine"
	"github.com/EBonura/bonnie-engine/pkg/level"
	"github.com/EBonura/bonnie-engine/pkg/render"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// action is a viewer command bound to a key by each front end.
type action int

const (
	actNone action = iota
	actForward
	actBack
	actLeft
	actRight
	actUp
	actDown
	actTurnLeft
	actTurnRight
	actLookUp
	actLookDown
	actShadeNone
	actShadeFlat
	actShadeGouraud
	actPerspective
	actJitter
	actDepth
	actDither
	actLighting
	actPortals
	actBounds
	actBackfaces
	actRespawn
	actHUD
	actQuit
)

// app holds the viewer state shared by the terminal and window front ends.
// The render configuration is owned here and passed to every frame.
type app struct {
	lvl      *level.Level
	cfg      render.Config
	view     config.ViewConfig
	cam      *render.Camera
	player   *player
	renderer *engine.Renderer
	hud      hud
	lastRoom level.RoomID
}

func newApp(lvl *level.Level, rc render.Config, view config.ViewConfig) *app {
	cam := cameraFor(lvl, view)
	return &app{
		lvl:      lvl,
		cfg:      rc,
		view:     view,
		cam:      cam,
		player:   newPlayer(cam, view.FPS, view.MoveSpeed, view.TurnSpeed),
		renderer: engine.NewRenderer(engine.WithLogger(logger.Named("engine"))),
		lastRoom: level.Exterior,
	}
}

// apply performs one action. It reports false when the viewer should quit.
func (a *app) apply(act action) bool {
	p := a.player
	switch act {
	case actForward:
		p.forward.target = 1
	case actBack:
		p.forward.target = -1
	case actLeft:
		p.strafe.target = -1
	case actRight:
		p.strafe.target = 1
	case actUp:
		p.lift.target = 1
	case actDown:
		p.lift.target = -1
	case actTurnLeft:
		p.turn.target = 1
	case actTurnRight:
		p.turn.target = -1
	case actLookUp:
		p.look.target = 1
	case actLookDown:
		p.look.target = -1
	case actShadeNone:
		a.cfg.Shading = render.ShadeNone
	case actShadeFlat:
		a.cfg.Shading = render.ShadeFlat
	case actShadeGouraud:
		a.cfg.Shading = render.ShadeGouraud
	case actPerspective:
		a.cfg.PerspectiveCorrect = !a.cfg.PerspectiveCorrect
	case actJitter:
		a.cfg.VertexJitter = !a.cfg.VertexJitter
	case actDepth:
		a.cfg.DepthTest = !a.cfg.DepthTest
	case actDither:
		a.cfg.Dithering = !a.cfg.Dithering
	case actLighting:
		a.cfg.Lighting = !a.cfg.Lighting
	case actPortals:
		a.cfg.ShowPortals = !a.cfg.ShowPortals
	case actBounds:
		a.cfg.ShowBounds = !a.cfg.ShowBounds
	case actBackfaces:
		a.cfg.BackfaceWireframe = !a.cfg.BackfaceWireframe
	case actRespawn:
		a.cam = cameraFor(a.lvl, a.view)
		a.player.cam = a.cam
		a.player.stop()
	case actHUD:
		a.hud.show = !a.hud.show
	case actQuit:
		return false
	}
	return true
}

// frame advances the player by dt seconds and renders.
func (a *app) frame(dt float64, decay bool) *render.Framebuffer {
	a.player.update(dt, decay)
	fb := a.renderer.RenderFrame(a.lvl, a.cam, a.cfg)
	a.hud.tick()

	st := a.renderer.Stats()
	if st.Room != a.lastRoom {
		logger.Debug("camera changed room",
			zap.Int("from", int(a.lastRoom)),
			zap.Int("to", int(st.Room)),
			zap.Bool("outside", st.Outside),
		)
		a.lastRoom = st.Room
	}
	return fb
}

// status is the one-line HUD text.
func (a *app) status() string {
	st := a.renderer.Stats()
	room := "outside"
	if !st.Skipped {
		room = fmt.Sprintf("room %d", st.Room)
		if r := a.lvl.Room(st.Room); r != nil && r.Name != "" {
			room += " " + r.Name
		}
	}

	modes := []string{a.cfg.Shading.String()}
	if a.cfg.PerspectiveCorrect {
		modes = append(modes, "perspective")
	} else {
		modes = append(modes, "affine")
	}
	for _, m := range []struct {
		on   bool
		name string
	}{
		{a.cfg.VertexJitter, "jitter"},
		{a.cfg.DepthTest, "zbuf"},
		{a.cfg.Dithering, "dither"},
		{a.cfg.Lighting, "light"},
	} {
		if m.on {
			modes = append(modes, m.name)
		}
	}

	return fmt.Sprintf("%.0f FPS | %s | %d rooms %d faces %d tris | %s",
		a.hud.fps, room, st.Rooms, st.Faces, st.Raster.Triangles, strings.Join(modes, " "))
}

// snapshot renders a single frame from the spawn point and writes it as a
// PNG, enlarged by scale with nearest-neighbour sampling.
func (a *app) snapshot(path string, scale int) error {
	fb := a.renderer.RenderFrame(a.lvl, a.cam, a.cfg)
	scale = max(scale, 1)

	src := fb.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, fb.Width*scale, fb.Height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	st := a.renderer.Stats()
	logger.Info("snapshot written",
		zap.String("path", path),
		zap.Int("room", int(st.Room)),
		zap.Int("rooms", st.Rooms),
		zap.Int("triangles", st.Raster.Triangles),
	)
	return nil
}
