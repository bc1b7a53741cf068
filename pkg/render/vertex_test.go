package render

import (
	"math"
	"testing"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
)

func vtx(x, y, z float64) Vertex {
	return Vertex{Position: math3d.V3(x, y, z), Color: ColorWhite}
}

// facingTri is counter-clockwise when seen from the origin looking down -Z.
func facingTri() Triangle {
	return Triangle{V: [3]Vertex{vtx(-1, -1, -5), vtx(1, -1, -5), vtx(0, 1, -5)}}
}

func reversed(tri Triangle) Triangle {
	return Triangle{V: [3]Vertex{tri.V[0], tri.V[2], tri.V[1]}}
}

func testProcessor(cfg Config) *Processor {
	return NewProcessor(ScreenWidth, ScreenHeight, originCamera().ViewProjectionMatrix(), cfg)
}

func TestSnapCoord(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		bits uint
		want float64
	}{
		{"rounds down", 1.03, 4, 1.0},
		{"rounds up", 1.04, 4, 1.0625},
		{"whole pixels", 10.4, 0, 10},
		{"half away from zero", 0.03125, 4, 0.0625},
		{"negative half away from zero", -0.03125, 4, -0.0625},
		{"already on grid", 3.5, 1, 3.5},
		{"precision capped", 1.000001, 64, 1.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SnapCoord(tc.v, tc.bits)
			if got != tc.want {
				t.Errorf("SnapCoord(%v, %d) = %v, want %v", tc.v, tc.bits, got, tc.want)
			}
			if again := SnapCoord(got, tc.bits); again != got {
				t.Errorf("snapping is not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestIsFrontFacing(t *testing.T) {
	tests := []struct {
		area  float64
		front Winding
		want  bool
	}{
		{-10, WindingCCW, true},
		{10, WindingCCW, false},
		{10, WindingCW, true},
		{-10, WindingCW, false},
		{0, WindingCCW, false},
		{0, WindingCW, false},
	}
	for _, tc := range tests {
		if got := IsFrontFacing(tc.area, tc.front); got != tc.want {
			t.Errorf("IsFrontFacing(%v, %v) = %v, want %v", tc.area, tc.front, got, tc.want)
		}
	}
}

func TestClipNear(t *testing.T) {
	cv := func(x, y, z, w, r float64) ClipVertex {
		return ClipVertex{Pos: math3d.Vec4{X: x, Y: y, Z: z, W: w}, Color: ColorF{R: r}}
	}

	t.Run("all inside", func(t *testing.T) {
		poly := []ClipVertex{cv(0, 0, 0, 1, 0), cv(1, 0, 0, 1, 0), cv(0, 1, 0, 1, 0)}
		if got := ClipNear(poly, 1e-5, nil); len(got) != 3 {
			t.Errorf("len = %d, want 3", len(got))
		}
	})

	t.Run("all behind", func(t *testing.T) {
		poly := []ClipVertex{cv(0, 0, -3, 1, 0), cv(1, 0, -3, 1, 0), cv(0, 1, -3, 1, 0)}
		if got := ClipNear(poly, 1e-5, nil); len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("one behind becomes a quad", func(t *testing.T) {
		poly := []ClipVertex{cv(0, 0, 0, 1, 0), cv(1, 0, 0, 1, 0), cv(0, 1, -3, 1, 90)}
		got := ClipNear(poly, 1e-5, nil)
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		for i, v := range got {
			if v.Pos.Z+v.Pos.W < -1e-9 {
				t.Errorf("vertex %d is behind the near plane: %v", i, v.Pos)
			}
		}
		// Both new vertices sit a third of the way from the kept edge.
		for _, i := range []int{0, 3} {
			if math.Abs(got[i].Color.R-30) > 1e-9 {
				t.Errorf("vertex %d colour = %v, want 30", i, got[i].Color.R)
			}
		}
	})

	t.Run("two behind stays a triangle", func(t *testing.T) {
		poly := []ClipVertex{cv(0, 0, 0, 1, 0), cv(1, 0, -3, 1, 0), cv(0, 1, -3, 1, 0)}
		if got := ClipNear(poly, 1e-5, nil); len(got) != 3 {
			t.Errorf("len = %d, want 3", len(got))
		}
	})

	t.Run("within epsilon counts as inside", func(t *testing.T) {
		poly := []ClipVertex{cv(0, 0, -1.000005, 1, 0), cv(1, 0, -1.000005, 1, 0), cv(0, 1, -1.000005, 1, 0)}
		if got := ClipNear(poly, 1e-5, nil); len(got) != 3 {
			t.Errorf("len = %d, want 3", len(got))
		}
	})

	t.Run("appends to dst", func(t *testing.T) {
		dst := []ClipVertex{cv(9, 9, 9, 9, 9)}
		poly := []ClipVertex{cv(0, 0, -3, 1, 0), cv(1, 0, -3, 1, 0), cv(0, 1, -3, 1, 0)}
		if got := ClipNear(poly, 1e-5, dst); len(got) != 1 {
			t.Errorf("len = %d, want dst untouched", len(got))
		}
	})
}

func TestProcessTriangleCulling(t *testing.T) {
	tests := []struct {
		name        string
		tri         Triangle
		front       Winding
		doubleSided bool
		want        Outcome
	}{
		{"ccw front", facingTri(), WindingCCW, false, OutcomeEmitted},
		{"ccw back", reversed(facingTri()), WindingCCW, false, OutcomeCulled},
		{"cw front", reversed(facingTri()), WindingCW, false, OutcomeEmitted},
		{"cw back", facingTri(), WindingCW, false, OutcomeCulled},
		{"double sided back", reversed(facingTri()), WindingCCW, true, OutcomeEmitted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.FrontFace = tc.front
			p := testProcessor(cfg)

			out, outcome := p.ProcessTriangle(nil, tc.tri, tc.doubleSided)
			if outcome != tc.want {
				t.Fatalf("outcome = %v, want %v", outcome, tc.want)
			}
			if tc.want == OutcomeEmitted && len(out) != 1 {
				t.Errorf("emitted %d triangles, want 1", len(out))
			}
			if tc.want == OutcomeCulled && len(out) != 0 {
				t.Errorf("culled triangle emitted %d triangles", len(out))
			}
		})
	}
}

func TestProcessTriangleBehindCamera(t *testing.T) {
	p := testProcessor(testConfig())
	tri := Triangle{V: [3]Vertex{vtx(-1, -1, 5), vtx(1, -1, 5), vtx(0, 1, 5)}}

	out, outcome := p.ProcessTriangle(nil, tri, true)
	if outcome != OutcomeBehind || len(out) != 0 {
		t.Errorf("outcome = %v with %d triangles, want behind with none", outcome, len(out))
	}
	if p.Stats.Behind != 1 || p.Stats.Submitted != 1 {
		t.Errorf("stats = %+v", p.Stats)
	}
}

func TestProcessTriangleNearClipSplits(t *testing.T) {
	p := testProcessor(testConfig())
	tri := Triangle{V: [3]Vertex{vtx(-1, -1, -5), vtx(1, -1, -5), vtx(0, 1, 1)}}

	out, outcome := p.ProcessTriangle(nil, tri, false)
	if outcome != OutcomeEmitted {
		t.Fatalf("outcome = %v, want emitted", outcome)
	}
	if len(out) != 2 {
		t.Errorf("emitted %d triangles, want 2", len(out))
	}
	if p.Stats.Clipped != 1 || p.Stats.Emitted != 2 {
		t.Errorf("stats = %+v", p.Stats)
	}
	for _, st := range out {
		for _, v := range st.V {
			if v.Z < -1-1e-6 {
				t.Errorf("vertex depth %v in front of the near plane", v.Z)
			}
		}
	}
}

func TestProcessTriangleDegenerate(t *testing.T) {
	p := testProcessor(testConfig())
	edgeOn := Triangle{V: [3]Vertex{vtx(0, -1, -5), vtx(0, 1, -5), vtx(0, 0, -6)}}

	_, outcome := p.ProcessTriangle(nil, edgeOn, true)
	if outcome != OutcomeDegenerate {
		t.Errorf("outcome = %v, want degenerate", outcome)
	}
}

func TestProcessTriangleJitter(t *testing.T) {
	tri := Triangle{V: [3]Vertex{vtx(-0.913, -0.771, -5.3), vtx(1.17, -0.83, -5.1), vtx(0.05, 1.13, -4.9)}}
	onGrid := func(v float64) bool { return SnapCoord(v, 4) == v }

	cfg := testConfig()
	cfg.VertexJitter = true
	snapped, _ := testProcessor(cfg).ProcessTriangle(nil, tri, true)

	cfg.VertexJitter = false
	exact, _ := testProcessor(cfg).ProcessTriangle(nil, tri, true)

	if len(snapped) != 1 || len(exact) != 1 {
		t.Fatalf("got %d and %d triangles, want 1 each", len(snapped), len(exact))
	}
	differs := false
	for i := range 3 {
		s, e := snapped[0].V[i], exact[0].V[i]
		if !onGrid(s.X) || !onGrid(s.Y) {
			t.Errorf("vertex %d (%v, %v) is not on the 1/16 pixel grid", i, s.X, s.Y)
		}
		if math.Abs(s.X-e.X) > 1.0/32 || math.Abs(s.Y-e.Y) > 1.0/32 {
			t.Errorf("vertex %d moved more than half a snap step", i)
		}
		if s.X != e.X || s.Y != e.Y {
			differs = true
		}
		if s.Z != e.Z || s.InvW != e.InvW {
			t.Errorf("vertex %d depth changed by snapping", i)
		}
	}
	if !differs {
		t.Error("jitter on and off produced identical coordinates")
	}
}

func TestProcessTriangleDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.VertexJitter = true
	tri := facingTri()

	a, _ := testProcessor(cfg).ProcessTriangle(nil, tri, false)
	b, _ := testProcessor(cfg).ProcessTriangle(nil, tri, false)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("triangle %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestProcessTriangleLighting(t *testing.T) {
	tests := []struct {
		name  string
		light math3d.Vec3
		want  float64
	}{
		{"lit head on", math3d.V3(0, 0, -1), 200},
		{"lit from behind", math3d.V3(0, 0, 1), 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Lighting = true
			cfg.LightDir = tc.light
			cfg.Ambient = 0.5

			tri := facingTri()
			for i := range tri.V {
				tri.V[i].Color = RGB(200, 200, 200)
			}
			out, _ := testProcessor(cfg).ProcessTriangle(nil, tri, false)
			if len(out) != 1 {
				t.Fatalf("emitted %d triangles, want 1", len(out))
			}
			for i, v := range out[0].V {
				if math.Abs(v.Color.R-tc.want) > 1e-9 {
					t.Errorf("vertex %d red = %v, want %v", i, v.Color.R, tc.want)
				}
			}
		})
	}
}

func TestProcessTriangleBackfaceOutlines(t *testing.T) {
	cfg := testConfig()
	cfg.BackfaceWireframe = true
	p := testProcessor(cfg)

	p.ProcessTriangle(nil, facingTri(), false)
	p.ProcessTriangle(nil, reversed(facingTri()), false)

	if len(p.Backfaces) != 1 {
		t.Fatalf("collected %d outlines, want 1", len(p.Backfaces))
	}
	if len(p.Backfaces[0]) != 3 {
		t.Errorf("outline has %d vertices, want 3", len(p.Backfaces[0]))
	}
	if p.Stats.Culled != 1 || p.Stats.Emitted != 1 {
		t.Errorf("stats = %+v", p.Stats)
	}
}

func BenchmarkProcessTriangle(b *testing.B) {
	cfg := DefaultConfig()
	p := testProcessor(cfg)
	tri := facingTri()
	out := make([]ScreenTriangle, 0, 8)

	for b.Loop() {
		out, _ = p.ProcessTriangle(out[:0], tri, false)
	}
}
