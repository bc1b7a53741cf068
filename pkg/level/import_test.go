package level

import (
	"image"
	"image/color"
	"testing"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/models"
	"github.com/EBonura/bonnie-engine/pkg/render"
)

// floorMesh is a 1x1 floor quad facing up with a textured material.
func floorMesh() *models.Mesh {
	m := models.NewMesh("floor")
	white := color.RGBA{255, 255, 255, 255}
	m.Vertices = []models.MeshVertex{
		{Position: math3d.V3(0, 0, 1), Color: white},
		{Position: math3d.V3(1, 0, 1), Color: white},
		{Position: math3d.V3(1, 0, 0), Color: white},
		{Position: math3d.V3(0, 0, 0), Color: white},
	}
	m.Faces = []models.Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{0, 2, 3}, Material: 0},
	}
	m.Materials = []models.Material{{Name: "stone", BaseColor: white, Image: 0}}
	m.Images = []image.Image{solidImage(4, 4, color.RGBA{90, 90, 90, 255})}
	m.CalculateBounds()
	return m
}

func TestImportRoomMesh(t *testing.T) {
	lvl := TestLevel()
	id, err := ImportRoomMesh(lvl, floorMesh(), "crypt", ImportOptions{Position: math3d.V3(0, -5, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if id != 3 {
		t.Fatalf("id = %d, want 3", id)
	}
	if err := lvl.Validate(); err != nil {
		t.Fatal(err)
	}

	r := lvl.Room(id)
	h, ok := lvl.Textures.Lookup("crypt/stone")
	if !ok {
		t.Fatal("material texture not added to the pool")
	}
	for i, f := range r.Faces {
		if f.Texture != h || f.Kind != KindFloor || f.Room != id {
			t.Errorf("face %d = %+v", i, f)
		}
	}
	if c := r.Vertices[0].Color; c != render.ColorNeutral {
		t.Errorf("textured white vertex = %v, want neutral", c)
	}
	if !r.ContainsPoint(math3d.V3(0.5, -5, 0.5)) {
		t.Error("room should be placed at its position")
	}
}

func TestImportRoomMeshScaleAndReuse(t *testing.T) {
	lvl := New("imports")
	mesh := floorMesh()
	if _, err := ImportRoomMesh(lvl, mesh, "hall", ImportOptions{Scale: 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportRoomMesh(lvl, mesh, "hall", ImportOptions{}); err != nil {
		t.Fatal(err)
	}
	if lvl.Textures.Len() != 1 {
		t.Errorf("textures = %d, want the material shared", lvl.Textures.Len())
	}
	if b := lvl.Rooms[0].Bounds; b.Max.X != 4 {
		t.Errorf("scaled bounds = %v", b.Max)
	}
	if mesh.BoundsMax.X != 1 {
		t.Error("importing with a scale must not modify the source mesh")
	}
}

func TestImportRoomUntextured(t *testing.T) {
	lvl := New("plain")
	mesh := floorMesh()
	mesh.Images = nil
	mesh.Materials[0].BaseColor = color.RGBA{200, 10, 10, 255}
	for i := range mesh.Vertices {
		mesh.Vertices[i].Color = mesh.Materials[0].BaseColor
	}

	id, err := ImportRoomMesh(lvl, mesh, "plain", ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	r := lvl.Room(id)
	if r.Faces[0].Texture != render.NoTexture {
		t.Error("face should be untextured")
	}
	if r.Vertices[0].Color != (color.RGBA{200, 10, 10, 255}) {
		t.Errorf("untextured colour = %v", r.Vertices[0].Color)
	}
}

func TestImportRoomGLBMissingFile(t *testing.T) {
	if _, err := ImportRoomGLB(New("x"), "/nonexistent/room.glb", ImportOptions{}); err == nil {
		t.Error("expected an error")
	}
}
