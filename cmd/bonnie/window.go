package main

import (
	"image"

	"github.com/EBonura/bonnie-engine/internal/config"
	"github.com/EBonura/bonnie-engine/internal/logger"
	"github.com/EBonura/bonnie-engine/pkg/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Held keys move the camera every tick.
var windowMoveKeys = map[ebiten.Key]action{
	ebiten.KeyW:          actForward,
	ebiten.KeyS:          actBack,
	ebiten.KeyA:          actLeft,
	ebiten.KeyD:          actRight,
	ebiten.KeySpace:      actUp,
	ebiten.KeyC:          actDown,
	ebiten.KeyArrowLeft:  actTurnLeft,
	ebiten.KeyArrowRight: actTurnRight,
	ebiten.KeyArrowUp:    actLookUp,
	ebiten.KeyArrowDown:  actLookDown,
}

// Toggles fire once per press.
var windowToggleKeys = map[ebiten.Key]action{
	ebiten.Key1:      actShadeNone,
	ebiten.Key2:      actShadeFlat,
	ebiten.Key3:      actShadeGouraud,
	ebiten.KeyP:      actPerspective,
	ebiten.KeyJ:      actJitter,
	ebiten.KeyZ:      actDepth,
	ebiten.KeyB:      actDither,
	ebiten.KeyL:      actLighting,
	ebiten.KeyO:      actPortals,
	ebiten.KeyN:      actBounds,
	ebiten.KeyX:      actBackfaces,
	ebiten.KeyR:      actRespawn,
	ebiten.KeySlash:  actHUD,
	ebiten.KeyEscape: actQuit,
}

// runWindow presents frames in a desktop window scaled from 320x240. It
// blocks until the window closes.
func runWindow(a *app, view config.ViewConfig) error {
	g := &windowGame{app: a, fps: max(view.FPS, 1)}
	scale := max(view.Scale, 1)
	ebiten.SetWindowTitle("bonnie - " + a.lvl.Name)
	ebiten.SetWindowSize(render.ScreenWidth*scale, render.ScreenHeight*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(g.fps)
	logger.Sugar.Infof("window viewer started at %dx scale", scale)
	return ebiten.RunGame(g)
}

type windowGame struct {
	app   *app
	fps   int
	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *windowGame) Update() error {
	for key, act := range windowToggleKeys {
		if inpututil.IsKeyJustPressed(key) && !g.app.apply(act) {
			return ebiten.Termination
		}
	}

	p := g.app.player
	for _, m := range p.axes() {
		m.target = 0
	}
	for key, act := range windowMoveKeys {
		if ebiten.IsKeyPressed(key) {
			g.app.apply(act)
		}
	}

	fb := g.app.frame(1/float64(g.fps), false)
	if g.img == nil || g.img.Bounds().Dx() != fb.Width || g.img.Bounds().Dy() != fb.Height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.Width, fb.Height)
	}
	fb.CopyTo(g.img)
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if g.fbImg == nil {
		return
	}
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
	if g.app.hud.show {
		ebitenutil.DebugPrint(screen, g.app.status())
	}
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return render.ScreenWidth, render.ScreenHeight
}
