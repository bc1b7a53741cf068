package render

import (
	"errors"
	"fmt"
)

// TextureHandle refers to a texture in a TexturePool.
type TextureHandle int

// NoTexture marks an untextured face.
const NoTexture TextureHandle = -1

// MaxTextureNameLen bounds texture names in a pool.
const MaxTextureNameLen = 256

// ErrDuplicateTexture is returned when a name is added to a pool twice.
var ErrDuplicateTexture = errors.New("duplicate texture name")

// TexturePool owns the textures of a level. Faces hold handles, never
// texture pointers. A pool is not safe for concurrent mutation; once loading
// is done it is only read.
type TexturePool struct {
	textures []*Texture
	names    []string
	byName   map[string]TextureHandle
}

// NewTexturePool creates an empty pool.
func NewTexturePool() *TexturePool {
	return &TexturePool{byName: make(map[string]TextureHandle)}
}

// Add stores tex under name and returns its handle.
func (p *TexturePool) Add(name string, tex *Texture) (TextureHandle, error) {
	switch {
	case tex == nil:
		return NoTexture, fmt.Errorf("texture %q is nil", name)
	case name == "":
		return NoTexture, errors.New("texture name is empty")
	case len(name) > MaxTextureNameLen:
		return NoTexture, fmt.Errorf("texture name longer than %d bytes", MaxTextureNameLen)
	}
	if _, ok := p.byName[name]; ok {
		return NoTexture, fmt.Errorf("%w: %q", ErrDuplicateTexture, name)
	}
	h := TextureHandle(len(p.textures))
	p.textures = append(p.textures, tex)
	p.names = append(p.names, name)
	p.byName[name] = h
	return h, nil
}

// Valid reports whether h resolves to a texture.
func (p *TexturePool) Valid(h TextureHandle) bool {
	return p != nil && h >= 0 && int(h) < len(p.textures)
}

// Get returns the texture for h, or nil for NoTexture and unknown handles.
func (p *TexturePool) Get(h TextureHandle) *Texture {
	if !p.Valid(h) {
		return nil
	}
	return p.textures[h]
}

// Lookup finds a texture by name.
func (p *TexturePool) Lookup(name string) (TextureHandle, bool) {
	if p == nil {
		return NoTexture, false
	}
	h, ok := p.byName[name]
	if !ok {
		return NoTexture, false
	}
	return h, true
}

// Name returns the name h was added under.
func (p *TexturePool) Name(h TextureHandle) string {
	if !p.Valid(h) {
		return ""
	}
	return p.names[h]
}

// Names returns every texture name in handle order.
func (p *TexturePool) Names() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.names...)
}

// Len returns the number of textures.
func (p *TexturePool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.textures)
}
