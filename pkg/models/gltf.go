package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // glTF texture formats
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/qmuntal/gltf"
)

// ErrUnsupported is returned for glTF features the loader does not handle.
var ErrUnsupported = errors.New("unsupported glTF feature")

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals derives normals when the file has none.
	CalculateNormals bool
	SmoothNormals    bool
	// SkipImages leaves Mesh.Images empty; materials keep their indices.
	SkipImages bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// LoadGLB loads a glTF or binary glTF (.glb) file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh. Relative image URIs are
// resolved next to the file.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path), filepath.Dir(path))
}

// FromDocument converts every triangle primitive of every mesh in doc into a
// single Mesh. Node transforms are not applied.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name, dir string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = readMaterials(doc)

	if !l.SkipImages {
		images, err := readImages(doc, dir)
		if err != nil {
			return nil, err
		}
		mesh.Images = images
	}

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVectors(doc, posIdx, 3)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals, uvs, colors [][4]float64
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVectors(doc, idx, 3); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVectors(doc, idx, 2); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}
		if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
			if colors, err = readVectors(doc, idx, 0); err != nil {
				return fmt.Errorf("read colors: %w", err)
			}
			mesh.HasColors = true
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}
		base := color.RGBA{255, 255, 255, 255}
		if material >= 0 {
			base = mesh.Materials[material].BaseColor
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{
				Position: math3d.V3(p[0], p[1], p[2]),
				Color:    base,
			}
			if i < len(normals) {
				v.Normal = math3d.V3(normals[i][0], normals[i][1], normals[i][2])
			}
			if i < len(uvs) {
				// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
				v.UV = math3d.V2(uvs[i][0], 1.0-uvs[i][1])
			}
			if i < len(colors) {
				v.Color = floatColor(colors[i])
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// glTF front faces are counter-clockwise, like ours.
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for k := range 3 {
				idx := indices[i+k]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d out of range (%d vertices)", idx, len(positions))
				}
				f.V[k] = baseVertex + idx
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

func floatColor(c [4]float64) color.RGBA {
	ch := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.RGBA{ch(c[0]), ch(c[1]), ch(c[2]), ch(c[3])}
}

// readMaterials converts the base colour and base colour texture of every
// material.
func readMaterials(doc *gltf.Document) []Material {
	out := make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		mat := Material{
			Name:        m.Name,
			BaseColor:   color.RGBA{255, 255, 255, 255},
			Image:       -1,
			DoubleSided: m.DoubleSided,
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				mat.BaseColor = floatColor(*f)
			}
			if ti := pbr.BaseColorTexture; ti != nil && ti.Index < len(doc.Textures) {
				if src := doc.Textures[ti.Index].Source; src != nil {
					mat.Image = *src
				}
			}
		}
		out[i] = mat
	}
	return out
}

// readImages decodes every image of the document, embedded or external.
func readImages(doc *gltf.Document, dir string) ([]image.Image, error) {
	out := make([]image.Image, len(doc.Images))
	for i, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer].Data
			if bv.ByteOffset+bv.ByteLength > len(buf) {
				return nil, fmt.Errorf("image %d: buffer view out of range", i)
			}
			data = buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
		case strings.HasPrefix(img.URI, "data:"):
			return nil, fmt.Errorf("image %d: data URI: %w", i, ErrUnsupported)
		case img.URI != "":
			b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(img.URI)))
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", i, err)
			}
			data = b
		default:
			continue
		}

		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image %d: %w", i, err)
		}
		out[i] = decoded
	}
	return out, nil
}

// accessorWidth returns the component count of an accessor type.
func accessorWidth(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	}
	return 0
}

func componentSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

// accessorView returns the bytes behind an accessor and the element stride.
func accessorView(doc *gltf.Document, acc *gltf.Accessor) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor without buffer view: %w", ErrUnsupported)
	}
	bv := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, errors.New("buffer has no data")
	}

	elem := accessorWidth(acc.Type) * componentSize(acc.ComponentType)
	if elem == 0 {
		return nil, 0, fmt.Errorf("accessor %v/%v: %w", acc.Type, acc.ComponentType, ErrUnsupported)
	}
	stride := bv.ByteStride
	if stride == 0 {
		stride = elem
	}

	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + elem
		if start < 0 || end > len(buf.Data) || end > bv.ByteOffset+bv.ByteLength {
			return nil, 0, errors.New("accessor out of range")
		}
	}
	return buf.Data[start:], stride, nil
}

// readComponent decodes one component as float64. Normalized integers map
// to [0,1].
func readComponent(b []byte, ct gltf.ComponentType, normalized bool) float64 {
	var v, scale float64
	switch ct {
	case gltf.ComponentFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case gltf.ComponentUbyte:
		v, scale = float64(b[0]), 255
	case gltf.ComponentByte:
		v, scale = float64(int8(b[0])), 127
	case gltf.ComponentUshort:
		v, scale = float64(binary.LittleEndian.Uint16(b)), 65535
	case gltf.ComponentShort:
		v, scale = float64(int16(binary.LittleEndian.Uint16(b))), 32767
	case gltf.ComponentUint:
		v, scale = float64(binary.LittleEndian.Uint32(b)), 4294967295
	}
	if normalized {
		return math.Max(v/scale, -1)
	}
	return v
}

// readVectors reads a VEC2/VEC3/VEC4 accessor. width is the required
// component count, or 0 to accept three or four (colours). Missing
// components are zero except alpha, which defaults to 1.
func readVectors(doc *gltf.Document, idx, width int) ([][4]float64, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	n := accessorWidth(acc.Type)
	switch {
	case width == 0 && (n == 3 || n == 4):
	case n == width:
	default:
		return nil, fmt.Errorf("accessor %d: unexpected type %v", idx, acc.Type)
	}

	data, stride, err := accessorView(doc, acc)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", idx, err)
	}
	size := componentSize(acc.ComponentType)

	out := make([][4]float64, acc.Count)
	for i := range out {
		out[i][3] = 1
		off := i * stride
		for c := range n {
			out[i][c] = readComponent(data[off+c*size:], acc.ComponentType, acc.Normalized)
		}
	}
	return out, nil
}

// readIndices reads index data from a scalar accessor.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor has type %v", acc.Type)
	}
	switch acc.ComponentType {
	case gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint:
	default:
		return nil, fmt.Errorf("unexpected index type: %v", acc.ComponentType)
	}

	data, stride, err := accessorView(doc, acc)
	if err != nil {
		return nil, err
	}
	out := make([]int, acc.Count)
	for i := range out {
		out[i] = int(readComponent(data[i*stride:], acc.ComponentType, false))
	}
	return out, nil
}
