package main

import "time"

// hud tracks the frame rate shown in the status line.
type hud struct {
	show   bool
	fps    float64
	frames int
	since  time.Time
}

// tick counts one frame and refreshes the FPS figure once a second.
func (h *hud) tick() {
	if h.since.IsZero() {
		h.since = time.Now()
	}
	h.frames++
	if elapsed := time.Since(h.since); elapsed >= time.Second {
		h.fps = float64(h.frames) / elapsed.Seconds()
		h.frames = 0
		h.since = time.Now()
	}
}
