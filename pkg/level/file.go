package level

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// On-disk YAML layout. Room IDs are implicit in list order; faces name
// their texture as "pack/name" relative to the texture directory.
type levelFile struct {
	Name  string     `yaml:"name"`
	Spawn spawnFile  `yaml:"spawn"`
	Rooms []roomFile `yaml:"rooms"`
}

type vec3 [3]float64

func (v vec3) vec() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

func toVec3(v math3d.Vec3) vec3 { return vec3{v.X, v.Y, v.Z} }

type spawnFile struct {
	Position vec3    `yaml:"position,flow"`
	Yaw      float64 `yaml:"yaw"`
	Room     RoomID  `yaml:"room"`
}

type roomFile struct {
	Name     string       `yaml:"name,omitempty"`
	Position vec3         `yaml:"position,flow"`
	Ambient  *float64     `yaml:"ambient,omitempty"`
	Vertices []vertexFile `yaml:"vertices"`
	Faces    []faceFile   `yaml:"faces"`
	Portals  []portalFile `yaml:"portals,omitempty"`
}

type vertexFile struct {
	Pos    vec3       `yaml:"pos,flow"`
	UV     [2]float64 `yaml:"uv,flow"`
	Color  *[4]uint8  `yaml:"color,omitempty,flow"`
	Normal *vec3      `yaml:"normal,omitempty,flow"`
}

type faceFile struct {
	Indices     []int            `yaml:"indices,flow"`
	Texture     string           `yaml:"texture,omitempty"`
	Kind        FaceKind         `yaml:"kind"`
	DoubleSided bool             `yaml:"double_sided,omitempty"`
	Blend       render.BlendMode `yaml:"blend,omitempty"`
}

type portalFile struct {
	To       RoomID `yaml:"to"`
	Vertices []vec3 `yaml:"vertices,flow"`
	Normal   *vec3  `yaml:"normal,omitempty,flow"`
}

// Loader reads level files.
type Loader struct {
	// TextureDir is the root of the texture packs. When empty, a "textures"
	// directory next to the level file is used if it exists.
	TextureDir string
	// TextureSize forces every texture to size x size; zero keeps the
	// nearest power of two.
	TextureSize int
	Logger      *zap.Logger
}

// Load reads a level file with default options.
func Load(path string) (*Level, error) {
	return (&Loader{}).Load(path)
}

// Load reads, resolves and validates the level at path. Any problem is
// fatal: no partially valid level is returned.
func (ld *Loader) Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}

	dir := ld.TextureDir
	if dir == "" {
		cand := filepath.Join(filepath.Dir(path), "textures")
		if st, err := os.Stat(cand); err == nil && st.IsDir() {
			dir = cand
		}
	}

	pool := render.NewTexturePool()
	if dir != "" {
		if pool, err = LoadTextureDir(dir, ld.TextureSize, ld.logger()); err != nil {
			return nil, err
		}
	}

	lvl, err := Parse(data, pool)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	ld.logger().Info("level loaded",
		zap.String("path", path),
		zap.String("name", lvl.Name),
		zap.Int("rooms", len(lvl.Rooms)),
		zap.Int("faces", lvl.FaceCount()),
		zap.Int("textures", lvl.Textures.Len()),
	)
	return lvl, nil
}

func (ld *Loader) logger() *zap.Logger {
	if ld.Logger == nil {
		return zap.NewNop()
	}
	return ld.Logger
}

// Parse decodes a YAML level, resolving texture names against pool.
// Unknown fields, unresolved textures and every Validate problem are
// errors.
func Parse(data []byte, pool *render.TexturePool) (*Level, error) {
	var f levelFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	if pool == nil {
		pool = render.NewTexturePool()
	}

	lvl := New(f.Name)
	lvl.Textures = pool
	lvl.Spawn = Spawn{Position: f.Spawn.Position.vec(), Yaw: f.Spawn.Yaw, Room: f.Spawn.Room}

	var unresolved []string
	for i, rf := range f.Rooms {
		r := lvl.AddRoom(rf.Name, rf.Position.vec())
		if rf.Ambient != nil {
			r.Ambient = *rf.Ambient
		}
		for _, vf := range rf.Vertices {
			v := Vertex{Position: vf.Pos.vec(), UV: math3d.V2(vf.UV[0], vf.UV[1]), Color: render.ColorNeutral}
			if vf.Color != nil {
				v.Color = render.RGBA(vf.Color[0], vf.Color[1], vf.Color[2], vf.Color[3])
			}
			if vf.Normal != nil {
				v.Normal = vf.Normal.vec()
			}
			r.AddVertex(v)
		}
		r.RecalculateBounds()

		for j, ff := range rf.Faces {
			face := Face{
				Indices:     ff.Indices,
				Texture:     render.NoTexture,
				Kind:        ff.Kind,
				DoubleSided: ff.DoubleSided,
				Blend:       ff.Blend,
			}
			if ff.Texture != "" {
				h, ok := pool.Lookup(ff.Texture)
				if !ok {
					unresolved = append(unresolved, fmt.Sprintf("room %d face %d references unknown texture %q", i, j, ff.Texture))
				}
				face.Texture = h
			}
			r.AddFace(face)
		}

		for _, pf := range rf.Portals {
			verts := make([]math3d.Vec3, len(pf.Vertices))
			for k, v := range pf.Vertices {
				verts[k] = v.vec()
			}
			var n math3d.Vec3
			if pf.Normal != nil {
				n = pf.Normal.vec()
			}
			r.AddPortal(pf.To, verts, n)
		}
	}

	err := lvl.Validate()
	if len(unresolved) > 0 {
		var ve *ValidationError
		if errors.As(err, &ve) {
			unresolved = append(unresolved, ve.Problems...)
		}
		return nil, &ValidationError{Problems: unresolved}
	}
	if err != nil {
		return nil, err
	}
	return lvl, nil
}

// Marshal encodes a level as YAML.
func Marshal(lvl *Level) ([]byte, error) {
	f := levelFile{
		Name:  lvl.Name,
		Spawn: spawnFile{Position: toVec3(lvl.Spawn.Position), Yaw: lvl.Spawn.Yaw, Room: lvl.Spawn.Room},
		Rooms: make([]roomFile, len(lvl.Rooms)),
	}
	for i := range lvl.Rooms {
		r := &lvl.Rooms[i]
		ambient := r.Ambient
		rf := roomFile{
			Name:     r.Name,
			Position: toVec3(r.Position),
			Ambient:  &ambient,
			Vertices: make([]vertexFile, len(r.Vertices)),
			Faces:    make([]faceFile, len(r.Faces)),
		}
		for j, v := range r.Vertices {
			c := [4]uint8{v.Color.R, v.Color.G, v.Color.B, v.Color.A}
			vf := vertexFile{Pos: toVec3(v.Position), UV: [2]float64{v.UV.X, v.UV.Y}, Color: &c}
			if v.Normal != math3d.Zero3() {
				n := toVec3(v.Normal)
				vf.Normal = &n
			}
			rf.Vertices[j] = vf
		}
		for j, face := range r.Faces {
			rf.Faces[j] = faceFile{
				Indices:     face.Indices,
				Texture:     lvl.Textures.Name(face.Texture),
				Kind:        face.Kind,
				DoubleSided: face.DoubleSided,
				Blend:       face.Blend,
			}
		}
		for _, p := range r.Portals {
			pf := portalFile{To: p.To, Vertices: make([]vec3, len(p.Vertices))}
			for k, v := range p.Vertices {
				pf.Vertices[k] = toVec3(v)
			}
			n := toVec3(p.Normal)
			pf.Normal = &n
			rf.Portals = append(rf.Portals, pf)
		}
		f.Rooms[i] = rf
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes lvl to path as YAML. Textures are not written; see
// SaveTextureDir.
func Save(lvl *Level, path string) error {
	data, err := Marshal(lvl)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save level: %w", err)
	}
	return nil
}
