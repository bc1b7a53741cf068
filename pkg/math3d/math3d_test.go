package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestVec3Basics(t *testing.T) {
	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"add", V3(1, 2, 3).Add(V3(1, 1, 1)), V3(2, 3, 4)},
		{"sub", V3(1, 2, 3).Sub(V3(1, 1, 1)), V3(0, 1, 2)},
		{"cross x*y", V3(1, 0, 0).Cross(V3(0, 1, 0)), V3(0, 0, 1)},
		{"normalize", V3(0, 3, 0).Normalize(), V3(0, 1, 0)},
		{"normalize zero", Zero3().Normalize(), Zero3()},
		{"lerp half", V3(0, 0, 0).Lerp(V3(2, 4, 6), 0.5), V3(1, 2, 3)},
		{"min", V3(1, 5, 3).Min(V3(2, 4, 6)), V3(1, 4, 3)},
		{"max", V3(1, 5, 3).Max(V3(2, 4, 6)), V3(2, 5, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !vecNear(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if V3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	if V3(0, math.Inf(-1), 0).IsFinite() {
		t.Error("Inf vector reported as finite")
	}
	if got := V3(-7, 2, 3).MaxAbs(); got != 7 {
		t.Errorf("MaxAbs = %v, want 7", got)
	}
}

func TestVec2Cross(t *testing.T) {
	if got := V2(1, 0).Cross(V2(0, 1)); got != 1 {
		t.Errorf("Cross = %v, want 1", got)
	}
	if got := V2(0, 1).Cross(V2(1, 0)); got != -1 {
		t.Errorf("Cross = %v, want -1", got)
	}
}

func TestMat4TranslateRotate(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	if got := m.MulVec3(V3(1, 1, 1)); !vecNear(got, V3(2, 3, 4)) {
		t.Errorf("translate point = %v", got)
	}
	if got := m.MulVec3Dir(V3(1, 1, 1)); !vecNear(got, V3(1, 1, 1)) {
		t.Errorf("translate direction = %v", got)
	}

	r := RotateY(math.Pi / 2)
	if got := r.MulVec3(V3(1, 0, 0)); !vecNear(got, V3(0, 0, -1)) {
		t.Errorf("RotateY(90) * X = %v, want (0,0,-1)", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := 0.5, 50.0
	p := Perspective(math.Pi/2, 1, near, far)

	n := p.MulVec4(Vec4{0, 0, -near, 1}).PerspectiveDivide()
	if math.Abs(n.Z+1) > 1e-9 {
		t.Errorf("near plane depth = %v, want -1", n.Z)
	}
	f := p.MulVec4(Vec4{0, 0, -far, 1}).PerspectiveDivide()
	if math.Abs(f.Z-1) > 1e-9 {
		t.Errorf("far plane depth = %v, want 1", f.Z)
	}

	// w carries the view distance.
	if w := p.MulVec4(Vec4{0, 0, -7, 1}).W; math.Abs(w-7) > 1e-12 {
		t.Errorf("w = %v, want 7", w)
	}
}

func TestNormalMatrix(t *testing.T) {
	// Non-uniform scale must keep normals perpendicular to the surface.
	m := Scale(V3(2, 1, 1))
	n := m.NormalMatrix().MulVec3Dir(V3(1, 1, 0).Normalize()).Normalize()

	tangent := m.MulVec3Dir(V3(1, -1, 0))
	if d := n.Dot(tangent); math.Abs(d) > 1e-9 {
		t.Errorf("transformed normal not perpendicular, dot = %v", d)
	}

	if got := Identity().NormalMatrix(); got != Identity() {
		t.Errorf("identity normal matrix = %v", got)
	}
	if got := Scale(V3(0, 1, 1)).NormalMatrix(); got != Identity() {
		t.Errorf("singular normal matrix = %v, want identity", got)
	}
}
