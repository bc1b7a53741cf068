package engine

import (
	"testing"

	"github.com/EBonura/bonnie-engine/pkg/level"
	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func spawnCamera(lvl *level.Level) *render.Camera {
	cam := render.NewCamera()
	cam.SetPosition(lvl.Spawn.Position)
	cam.SetRotation(0, lvl.Spawn.Yaw, 0)
	return cam
}

func countColor(fb *render.Framebuffer, c render.Color) int {
	n := 0
	for _, p := range fb.Color {
		if p == c {
			n++
		}
	}
	return n
}

func TestRenderFrameTestLevel(t *testing.T) {
	lvl := level.TestLevel()
	cam := spawnCamera(lvl)
	cfg := render.DefaultConfig()
	r := NewRenderer()

	fb := r.RenderFrame(lvl, cam, cfg)

	st := r.Stats()
	if st.Room != 0 || st.Outside || st.Skipped {
		t.Errorf("stats = %+v, want rendered from room 0", st)
	}
	if cam.Room != 0 {
		t.Errorf("camera room = %d, want 0", cam.Room)
	}
	if st.Rooms != 3 || st.Faces != lvl.FaceCount() {
		t.Errorf("rooms = %d faces = %d, want 3 and %d", st.Rooms, st.Faces, lvl.FaceCount())
	}
	if st.Vertex.Submitted == 0 || st.Raster.Pixels == 0 {
		t.Errorf("nothing drawn: %+v", st)
	}

	// The camera is enclosed, so nearly every pixel is covered.
	bg := countColor(fb, cfg.Background)
	if total := len(fb.Color); bg > total/10 {
		t.Errorf("%d of %d pixels left as background", bg, total)
	}
}

func TestRenderFrameIsDeterministic(t *testing.T) {
	lvl := level.TestLevel()
	cfg := render.DefaultConfig()

	r1, r2 := NewRenderer(), NewRenderer()
	// r1 renders twice to check nothing leaks between frames.
	r1.RenderFrame(lvl, spawnCamera(lvl), cfg)
	a := r1.RenderFrame(lvl, spawnCamera(lvl), cfg)
	b := r2.RenderFrame(lvl, spawnCamera(lvl), cfg)

	for i := range a.Color {
		if a.Color[i] != b.Color[i] {
			t.Fatalf("pixel %d differs: %v vs %v", i, a.Color[i], b.Color[i])
		}
	}
}

func TestRenderFrameOutsideRoom(t *testing.T) {
	lvl := level.TestLevel()
	outside := math3d.V3(20, 1.6, 2)

	t.Run("nearest", func(t *testing.T) {
		cam := render.NewCamera()
		cam.SetPosition(outside)
		r := NewRenderer()
		r.RenderFrame(lvl, cam, render.DefaultConfig())
		st := r.Stats()
		if !st.Outside || st.Skipped || st.Room != 1 || st.Rooms == 0 {
			t.Errorf("stats = %+v, want the annex used as fallback", st)
		}
	})

	t.Run("skip", func(t *testing.T) {
		cam := render.NewCamera()
		cam.SetPosition(outside)
		cam.Room = 0
		cfg := render.DefaultConfig()
		cfg.OutsideRoom = render.OutsideSkip
		r := NewRenderer()
		fb := r.RenderFrame(lvl, cam, cfg)
		if st := r.Stats(); !st.Skipped || st.Rooms != 0 {
			t.Errorf("stats = %+v, want skipped", st)
		}
		if cam.Room != render.NoRoom {
			t.Errorf("camera room = %d, want NoRoom", cam.Room)
		}
		if n := countColor(fb, cfg.Background); n != len(fb.Color) {
			t.Errorf("%d pixels drawn, want a cleared frame", len(fb.Color)-n)
		}
	})

	t.Run("empty level", func(t *testing.T) {
		r := NewRenderer()
		r.RenderFrame(level.New("empty"), render.NewCamera(), render.DefaultConfig())
		if !r.Stats().Skipped {
			t.Error("a level without rooms renders nothing")
		}
	})
}

func TestRenderFrameKeepsBufferWithoutClear(t *testing.T) {
	lvl := level.TestLevel()
	cfg := render.DefaultConfig()
	r := NewRenderer()
	r.RenderFrame(lvl, spawnCamera(lvl), cfg)
	before := append([]render.Color(nil), r.Framebuffer().Color...)

	cfg.ClearBuffers = false
	cfg.OutsideRoom = render.OutsideSkip
	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(50, 50, 50))
	fb := r.RenderFrame(lvl, cam, cfg)

	for i := range before {
		if fb.Color[i] != before[i] {
			t.Fatalf("pixel %d changed without ClearBuffers", i)
		}
	}
}

// layeredLevel holds one room with two screen-filling quads facing a camera
// at the origin: red at z=-3 and blue at z=-6. nearFirst picks the stored
// face order.
func layeredLevel(nearFirst bool) *level.Level {
	lvl := level.New("layers")
	r := lvl.AddRoom("layers", math3d.Zero3())
	quad := func(z, s float64, c render.Color) {
		base := len(r.Vertices)
		for _, p := range []math3d.Vec3{
			math3d.V3(-s, -s, z), math3d.V3(s, -s, z), math3d.V3(s, s, z), math3d.V3(-s, s, z),
		} {
			r.AddVertex(level.Vertex{Position: p, Color: c})
		}
		r.AddFace(level.Face{Indices: []int{base, base + 1, base + 2, base + 3}, Texture: render.NoTexture})
	}
	red, blue := render.RGB(255, 0, 0), render.RGB(0, 0, 255)
	if nearFirst {
		quad(-3, 1, red)
		quad(-6, 6, blue)
	} else {
		quad(-6, 6, blue)
		quad(-3, 1, red)
	}
	// Extend the bounds around the camera.
	r.AddVertex(level.Vertex{Position: math3d.V3(-5, -5, 1)})
	r.AddVertex(level.Vertex{Position: math3d.V3(5, 5, -10)})
	r.RecalculateBounds()
	return lvl
}

func TestDepthOrderAndPainter(t *testing.T) {
	red, blue := render.RGB(255, 0, 0), render.RGB(0, 0, 255)
	tests := []struct {
		name      string
		depth     bool
		painter   bool
		nearFirst bool
		want      render.Color
	}{
		{"depth near first", true, false, true, red},
		{"depth far first", true, false, false, red},
		{"no depth near first overwrites", false, false, true, blue},
		{"no depth far first", false, false, false, red},
		{"painter near first", false, true, true, red},
		{"painter far first", false, true, false, red},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lvl := layeredLevel(tc.nearFirst)
			if err := lvl.Validate(); err != nil {
				t.Fatal(err)
			}
			cfg := render.DefaultConfig()
			cfg.Shading = render.ShadeFlat
			cfg.DepthTest = tc.depth
			cfg.PainterSort = tc.painter

			cam := render.NewCamera()
			cam.SetPosition(math3d.Zero3())
			fb := NewRenderer().RenderFrame(lvl, cam, cfg)

			if got := fb.GetPixel(render.ScreenWidth/2, render.ScreenHeight/2); got != tc.want {
				t.Errorf("centre = %v, want %v", got, tc.want)
			}
			// Outside the small quad only the far one shows.
			if got := fb.GetPixel(20, 20); got != blue {
				t.Errorf("corner = %v, want blue", got)
			}
		})
	}
}

func TestDebugOverlays(t *testing.T) {
	lvl := level.TestLevel()
	cfg := render.DefaultConfig()
	cfg.ShowPortals = true
	cfg.ShowBounds = true
	cfg.BackfaceWireframe = true
	r := NewRenderer()
	fb := r.RenderFrame(lvl, spawnCamera(lvl), cfg)

	if countColor(fb, cfg.PortalColor) == 0 {
		t.Error("no portal outlines drawn")
	}
	if countColor(fb, cfg.BoundsColor) == 0 {
		t.Error("no room bounds drawn")
	}
	// The far sides of the neighbouring rooms' walls face away.
	if r.Stats().Vertex.Culled == 0 || countColor(fb, cfg.WireColor) == 0 {
		t.Errorf("no back face outlines drawn (culled %d)", r.Stats().Vertex.Culled)
	}
}

func TestDepthLimitIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lvl := level.TestLevel()
	cfg := render.DefaultConfig()
	cfg.MaxPortalDepth = 1

	// Both other rooms are direct neighbours of the hall.
	r := NewRenderer(WithLogger(zap.New(core)))
	r.RenderFrame(lvl, spawnCamera(lvl), cfg)
	if st := r.Stats(); st.Rooms != 3 {
		t.Errorf("rooms = %d, want 3", st.Rooms)
	}
	if logs.Len() != r.Stats().DepthLimited {
		t.Errorf("logged %d warnings for %d limited portals", logs.Len(), r.Stats().DepthLimited)
	}
}

func TestWithFramebuffer(t *testing.T) {
	fb := render.NewFramebuffer(64, 48)
	r := NewRenderer(WithFramebuffer(fb))
	lvl := level.TestLevel()
	cam := spawnCamera(lvl)
	if got := r.RenderFrame(lvl, cam, render.DefaultConfig()); got != fb {
		t.Error("RenderFrame should draw into the supplied framebuffer")
	}
	if cam.AspectRatio != 64.0/48.0 {
		t.Errorf("aspect = %v, want the framebuffer's", cam.AspectRatio)
	}
	if r.Stats().Raster.Pixels == 0 {
		t.Error("nothing drawn into the small framebuffer")
	}
}

func BenchmarkRenderFrame(b *testing.B) {
	lvl := level.TestLevel()
	cam := spawnCamera(lvl)
	cfg := render.DefaultConfig()
	r := NewRenderer()
	for b.Loop() {
		r.RenderFrame(lvl, cam, cfg)
	}
}
