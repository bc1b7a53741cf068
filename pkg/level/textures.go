package level

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/EBonura/bonnie-engine/pkg/render"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp" // Register BMP decoder
)

var textureExts = map[string]bool{
	".png":  true,
	".bmp":  true,
	".jpg":  true,
	".jpeg": true,
}

// ConvertImage turns any image into a texture. Images that are not a
// size x size square are resized with nearest-neighbour sampling. A size of
// zero picks the next power of two of the larger edge, up to
// render.MaxTextureSize.
func ConvertImage(img image.Image, size int) (*render.Texture, error) {
	b := img.Bounds()
	if size <= 0 {
		size = fitTextureSize(max(b.Dx(), b.Dy()))
	}
	if !render.ValidTextureSize(size) {
		return nil, fmt.Errorf("%w: got %d", render.ErrTextureSize, size)
	}
	if b.Dx() != size || b.Dy() != size {
		img = resize.Resize(uint(size), uint(size), img, resize.NearestNeighbor)
	}
	return render.TextureFromImage(img)
}

func fitTextureSize(edge int) int {
	size := 1
	for size < edge && size < render.MaxTextureSize {
		size <<= 1
	}
	return size
}

// LoadTextureFile decodes a PNG, JPEG or BMP file into a texture.
func LoadTextureFile(path string, size int) (*render.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	tex, err := ConvertImage(img, size)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return tex, nil
}

// LoadTextureDir loads every image below dir into a new pool. Textures are
// named by their slash-separated path relative to dir without extension,
// so dir/retro/FLOOR_1A.png becomes "retro/FLOOR_1A". Handles follow the
// lexical order of the paths.
func LoadTextureDir(dir string, size int, logger *zap.Logger) (*render.TexturePool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := render.NewTexturePool()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if d.IsDir() || !textureExts[ext] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))

		tex, err := LoadTextureFile(path, size)
		if err != nil {
			return err
		}
		if _, err := pool.Add(name, tex); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("loaded texture", zap.String("name", name), zap.Int("size", tex.Width))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load textures from %s: %w", dir, err)
	}
	return pool, nil
}

// SaveTextureDir writes every texture of pool as a PNG below dir, using the
// same naming as LoadTextureDir.
func SaveTextureDir(pool *render.TexturePool, dir string) error {
	for i, name := range pool.Names() {
		path := filepath.Join(dir, filepath.FromSlash(name)+".png")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := writeTexturePNG(pool.Get(render.TextureHandle(i)), path); err != nil {
			return fmt.Errorf("save texture %q: %w", name, err)
		}
	}
	return nil
}

func writeTexturePNG(tex *render.Texture, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	for y := range tex.Height {
		for x := range tex.Width {
			img.SetRGBA(x, y, tex.GetPixel(x, y))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
