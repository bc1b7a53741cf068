package level

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/EBonura/bonnie-engine/pkg/render"
	"golang.org/x/image/bmp"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestConvertImage(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		size     int
		wantSize int
		wantErr  bool
	}{
		{"exact", 16, 16, 0, 16, false},
		{"odd picks next power", 3, 5, 0, 8, false},
		{"forced size", 3, 5, 4, 4, false},
		{"clamped", 300, 300, 0, 256, false},
		{"bad forced size", 4, 4, 3, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex, err := ConvertImage(solidImage(tc.w, tc.h, color.RGBA{10, 20, 30, 255}), tc.size)
			if tc.wantErr {
				if !errors.Is(err, render.ErrTextureSize) {
					t.Errorf("err = %v, want ErrTextureSize", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tex.Width != tc.wantSize || tex.Height != tc.wantSize {
				t.Errorf("size = %dx%d, want %d", tex.Width, tex.Height, tc.wantSize)
			}
			if c := tex.GetPixel(0, 0); c != (color.RGBA{10, 20, 30, 255}) {
				t.Errorf("pixel = %v", c)
			}
		})
	}
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	switch filepath.Ext(path) {
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadTextureDir(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "retro", "FLOOR.png"), solidImage(8, 8, color.RGBA{255, 0, 0, 255}))
	writeImage(t, filepath.Join(dir, "retro", "WALL.bmp"), solidImage(4, 4, color.RGBA{0, 0, 255, 255}))
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a texture"), 0o644); err != nil {
		t.Fatal(err)
	}

	pool, err := LoadTextureDir(dir, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	names := pool.Names()
	if len(names) != 2 || names[0] != "retro/FLOOR" || names[1] != "retro/WALL" {
		t.Fatalf("names = %q", names)
	}
	h, _ := pool.Lookup("retro/WALL")
	if c := pool.Get(h).GetPixel(1, 1); c != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("bmp pixel = %v", c)
	}
}

func TestLoadTextureDirDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.png"), solidImage(4, 4, color.RGBA{A: 255}))
	writeImage(t, filepath.Join(dir, "a.bmp"), solidImage(4, 4, color.RGBA{A: 255}))

	if _, err := LoadTextureDir(dir, 0, nil); !errors.Is(err, render.ErrDuplicateTexture) {
		t.Errorf("err = %v, want ErrDuplicateTexture", err)
	}
}

func TestLoadTextureFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTextureFile(path, 0); err == nil {
		t.Error("expected a decode error")
	}
}
