package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EBonura/bonnie-engine/internal/config"
	"github.com/EBonura/bonnie-engine/internal/logger"
	"github.com/EBonura/bonnie-engine/pkg/render"
	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"
)

// terminalKeys maps key names to viewer actions.
var terminalKeys = []struct {
	keys []string
	act  action
}{
	{[]string{"w"}, actForward},
	{[]string{"s"}, actBack},
	{[]string{"a"}, actLeft},
	{[]string{"d"}, actRight},
	{[]string{"space"}, actUp},
	{[]string{"c"}, actDown},
	{[]string{"left"}, actTurnLeft},
	{[]string{"right"}, actTurnRight},
	{[]string{"up"}, actLookUp},
	{[]string{"down"}, actLookDown},
	{[]string{"1"}, actShadeNone},
	{[]string{"2"}, actShadeFlat},
	{[]string{"3"}, actShadeGouraud},
	{[]string{"p"}, actPerspective},
	{[]string{"j"}, actJitter},
	{[]string{"z"}, actDepth},
	{[]string{"b"}, actDither},
	{[]string{"l"}, actLighting},
	{[]string{"o"}, actPortals},
	{[]string{"n"}, actBounds},
	{[]string{"x"}, actBackfaces},
	{[]string{"r"}, actRespawn},
	{[]string{"?", "shift+/"}, actHUD},
	{[]string{"escape", "ctrl+c"}, actQuit},
}

func terminalAction(ev uv.KeyPressEvent) action {
	for _, k := range terminalKeys {
		if ev.MatchString(k.keys...) {
			return k.act
		}
	}
	return actNone
}

// cancelOnSignal calls cancel when one of sigs arrives before ctx is done.
// The returned function stops signal delivery.
func cancelOnSignal(ctx context.Context, cancel context.CancelFunc, sigs ...os.Signal) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sigs...)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return func() { signal.Stop(sigChan) }
}

// runTerminal draws frames as half-block cells until Esc or a signal.
func runTerminal(a *app, view config.ViewConfig) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	presenter := render.NewTerminalRenderer(term)
	logger.Info("terminal viewer started", zap.Int("cols", width), zap.Int("rows", height))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSignals := cancelOnSignal(ctx, cancel, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Actions and resizes are handed to the render loop so the app state is
	// only touched from one goroutine.
	actions := make(chan action, 64)
	resizes := make(chan uv.WindowSizeEvent, 1)
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case resizes <- ev:
				default:
				}
			case uv.KeyPressEvent:
				if act := terminalAction(ev); act != actNone {
					select {
					case actions <- act:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	targetDuration := time.Second / time.Duration(max(view.FPS, 1))
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			logger.Info("terminal viewer stopped")
			return nil
		case ev := <-resizes:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			presenter.Resize(width, height)
		default:
		}

	drain:
		for {
			select {
			case act := <-actions:
				if !a.apply(act) {
					cancel()
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		presenter.Render(a.frame(dt, true))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
		if a.hud.show {
			drawStatus(a.status(), height)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// drawStatus writes the HUD line over the bottom terminal row.
func drawStatus(s string, height int) {
	const (
		reset     = "\x1b[0m"
		bgBlack   = "\x1b[40m"
		fgGreen   = "\x1b[92m"
		clearLine = "\x1b[2K"
	)
	fmt.Fprintf(os.Stdout, "\x1b[%d;1H%s%s%s %s %s", height, clearLine, bgBlack, fgGreen, s, reset)
}
