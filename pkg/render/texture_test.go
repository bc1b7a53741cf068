package render

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestValidTextureSize(t *testing.T) {
	tests := []struct {
		size int
		want bool
	}{
		{1, true},
		{2, true},
		{64, true},
		{256, true},
		{0, false},
		{-4, false},
		{3, false},
		{100, false},
		{512, false},
	}
	for _, tc := range tests {
		if got := ValidTextureSize(tc.size); got != tc.want {
			t.Errorf("ValidTextureSize(%d) = %v, want %v", tc.size, got, tc.want)
		}
	}
}

func TestNewTextureRejectsBadSize(t *testing.T) {
	if _, err := NewTexture(48); !errors.Is(err, ErrTextureSize) {
		t.Errorf("err = %v, want ErrTextureSize", err)
	}
}

func TestTextureFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 2, color.RGBA{10, 20, 30, 255})

	tex, err := TextureFromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if got := tex.GetPixel(1, 2); got != (Color{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel = %v", got)
	}

	if _, err := TextureFromImage(image.NewRGBA(image.Rect(0, 0, 4, 8))); !errors.Is(err, ErrTextureSize) {
		t.Errorf("non-square image: err = %v", err)
	}
}

func TestTextureSampleWraps(t *testing.T) {
	tex, err := NewTexture(4)
	if err != nil {
		t.Fatal(err)
	}
	for y := range 4 {
		for x := range 4 {
			tex.SetPixel(x, y, RGB(uint8(x), uint8(y), 0))
		}
	}

	tests := []struct {
		name   string
		u, v   float64
		wx, wy uint8
	}{
		{"v zero wraps to top row", 0, 0, 0, 0},
		{"top left", 0, 0.99, 0, 0},
		{"bottom row", 0.1, 0.1, 0, 3},
		{"right column", 0.9, 0.5, 3, 2},
		{"repeat positive", 1.3, 0.5, 1, 2},
		{"repeat negative", -0.2, 0.5, 3, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tex.Sample(tc.u, tc.v)
			if got.R != tc.wx || got.G != tc.wy {
				t.Errorf("Sample(%v, %v) = texel (%d,%d), want (%d,%d)", tc.u, tc.v, got.R, got.G, tc.wx, tc.wy)
			}
		})
	}
}

func TestProceduralTextures(t *testing.T) {
	checker, err := NewCheckerTexture(8, 2, ColorWhite, ColorBlack)
	if err != nil {
		t.Fatal(err)
	}
	if checker.GetPixel(0, 0) != ColorWhite || checker.GetPixel(2, 0) != ColorBlack || checker.GetPixel(2, 2) != ColorWhite {
		t.Error("checker pattern is wrong")
	}

	brick, err := NewBrickTexture(32, ColorRed, ColorGray)
	if err != nil {
		t.Fatal(err)
	}
	if brick.GetPixel(5, 0) != ColorGray {
		t.Error("first row should be mortar")
	}
	if brick.GetPixel(3, 2) != ColorRed {
		t.Error("expected brick colour inside a brick")
	}
}

func TestTexturePool(t *testing.T) {
	pool := NewTexturePool()
	a, _ := NewTexture(8)
	b, _ := NewTexture(16)

	ha, err := pool.Add("stone", a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := pool.Add("wood", b)
	if err != nil {
		t.Fatal(err)
	}
	if ha == hb {
		t.Fatal("handles must differ")
	}
	if pool.Get(hb) != b || pool.Name(ha) != "stone" || pool.Len() != 2 {
		t.Error("pool lookups disagree with insertion")
	}
	if h, ok := pool.Lookup("wood"); !ok || h != hb {
		t.Errorf("Lookup(wood) = %v, %v", h, ok)
	}
	if _, ok := pool.Lookup("glass"); ok {
		t.Error("unknown name resolved")
	}
	if pool.Get(NoTexture) != nil || pool.Get(TextureHandle(7)) != nil {
		t.Error("invalid handles must resolve to nil")
	}

	if _, err := pool.Add("stone", a); !errors.Is(err, ErrDuplicateTexture) {
		t.Errorf("duplicate add: err = %v", err)
	}
	if _, err := pool.Add("", a); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := pool.Add("nil", nil); err == nil {
		t.Error("nil texture accepted")
	}
}

func TestNilTexturePool(t *testing.T) {
	var pool *TexturePool
	if pool.Len() != 0 || pool.Get(0) != nil || pool.Valid(0) {
		t.Error("nil pool should be empty")
	}
}
