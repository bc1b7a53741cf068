package level

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/models"
	"github.com/EBonura/bonnie-engine/pkg/render"
)

// ImportOptions controls ImportRoomGLB.
type ImportOptions struct {
	Name     string // Defaults to the file name without extension
	Position math3d.Vec3
	Scale    float64 // Zero means 1
	// TextureSize forces material textures to size x size; zero keeps the
	// nearest power of two.
	TextureSize int
}

// ImportRoomGLB appends a room built from the triangles of a glTF or GLB
// file. Material images join the level's texture pool as "<name>/<material>".
// Faces are classified as floor, ceiling or wall by their normal. Textured
// vertices get colours on the neutral-128 scale. The room has no portals;
// callers add them with Room.AddPortal.
func ImportRoomGLB(lvl *Level, path string, opts ImportOptions) (RoomID, error) {
	mesh, err := models.LoadGLB(path)
	if err != nil {
		return Exterior, fmt.Errorf("import room: %w", err)
	}
	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return ImportRoomMesh(lvl, mesh, name, opts)
}

// ImportRoomMesh appends a room built from an already loaded mesh.
func ImportRoomMesh(lvl *Level, mesh *models.Mesh, name string, opts ImportOptions) (RoomID, error) {
	if len(lvl.Rooms) >= MaxRooms {
		return Exterior, fmt.Errorf("import room %q: level already has %d rooms", name, MaxRooms)
	}
	if opts.Scale != 0 && opts.Scale != 1 {
		mesh = mesh.Clone()
		mesh.Transform(math3d.Scale(math3d.V3(opts.Scale, opts.Scale, opts.Scale)))
	}

	handles := make([]render.TextureHandle, mesh.MaterialCount())
	for i := range handles {
		handles[i] = render.NoTexture
		img := mesh.MaterialImage(i)
		if img == nil {
			continue
		}
		matName := mesh.Materials[i].Name
		if matName == "" {
			matName = fmt.Sprintf("material%d", i)
		}
		texName := name + "/" + matName
		if h, ok := lvl.Textures.Lookup(texName); ok {
			handles[i] = h
			continue
		}
		tex, err := ConvertImage(img, opts.TextureSize)
		if err != nil {
			return Exterior, fmt.Errorf("import room %q: material %q: %w", name, matName, err)
		}
		h, err := lvl.Textures.Add(texName, tex)
		if err != nil && !errors.Is(err, render.ErrDuplicateTexture) {
			return Exterior, fmt.Errorf("import room %q: %w", name, err)
		}
		handles[i] = h
	}

	textured := make([]bool, len(mesh.Vertices))
	for _, f := range mesh.Faces {
		if f.Material >= 0 && f.Material < len(handles) && handles[f.Material] != render.NoTexture {
			for _, v := range f.V {
				textured[v] = true
			}
		}
	}

	r := lvl.AddRoom(name, opts.Position)
	for i, mv := range mesh.Vertices {
		c := mv.Color
		if textured[i] {
			c = neutralScale(c)
		}
		r.AddVertex(Vertex{Position: mv.Position, UV: mv.UV, Color: c, Normal: mv.Normal})
	}

	for _, f := range mesh.Faces {
		face := Face{
			Indices: []int{f.V[0], f.V[1], f.V[2]},
			Texture: render.NoTexture,
			Kind:    classify(mesh, f),
		}
		if mat := mesh.GetMaterial(f.Material); mat != nil {
			face.Texture = handles[f.Material]
			face.DoubleSided = mat.DoubleSided
		}
		r.AddFace(face)
	}
	r.RecalculateBounds()
	return r.ID, nil
}

// neutralScale maps full intensity 255 to the neutral modulation value 128.
func neutralScale(c render.Color) render.Color {
	s := func(v uint8) uint8 { return uint8((int(v)*128 + 127) / 255) }
	return render.RGBA(s(c.R), s(c.G), s(c.B), c.A)
}

func classify(mesh *models.Mesh, f models.Face) FaceKind {
	a := mesh.Vertices[f.V[0]].Position
	b := mesh.Vertices[f.V[1]].Position
	c := mesh.Vertices[f.V[2]].Position
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	switch {
	case n.Y > 0.7:
		return KindFloor
	case n.Y < -0.7:
		return KindCeiling
	}
	return KindWall
}
