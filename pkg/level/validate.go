package level

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
)

// Limits applied by Validate.
const (
	MaxRooms     = 256
	MaxPortals   = 64 // Per room
	MaxStringLen = 256
	MaxCoord     = 1e6
)

// ErrInvalidLevel is wrapped by every validation failure.
var ErrInvalidLevel = errors.New("invalid level")

// ValidationError lists every problem found in a level.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid level: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid level: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Unwrap makes errors.Is(err, ErrInvalidLevel) hold.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidLevel
}

type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) coord(what string, p math3d.Vec3) {
	if !p.IsFinite() || p.MaxAbs() > MaxCoord {
		v.addf("%s has invalid coordinate %v", what, p)
	}
}

// Validate checks every reference and limit in the level. A level that
// passes can be rendered without any further bounds checks.
func (l *Level) Validate() error {
	var v validator

	if len(l.Name) > MaxStringLen {
		v.addf("level name longer than %d bytes", MaxStringLen)
	}
	if len(l.Rooms) > MaxRooms {
		v.addf("%d rooms exceeds the limit of %d", len(l.Rooms), MaxRooms)
	}
	for _, name := range l.Textures.Names() {
		if len(name) > MaxStringLen {
			v.addf("texture name %.32q... longer than %d bytes", name, MaxStringLen)
		}
	}

	for i := range l.Rooms {
		l.validateRoom(&v, i)
	}

	if l.Spawn.Room != Exterior && !l.HasRoom(l.Spawn.Room) {
		v.addf("spawn references missing room %d", l.Spawn.Room)
	}
	v.coord("spawn", l.Spawn.Position)

	if len(v.problems) > 0 {
		return &ValidationError{Problems: v.problems}
	}
	return nil
}

func (l *Level) validateRoom(v *validator, i int) {
	r := &l.Rooms[i]
	where := fmt.Sprintf("room %d", i)

	if r.ID != RoomID(i) {
		v.addf("%s has id %d", where, r.ID)
	}
	if len(r.Name) > MaxStringLen {
		v.addf("%s name longer than %d bytes", where, MaxStringLen)
	}
	v.coord(where+" position", r.Position)
	if math.IsNaN(r.Ambient) || r.Ambient < 0 || r.Ambient > 1 {
		v.addf("%s ambient %v outside [0,1]", where, r.Ambient)
	}

	for j, vert := range r.Vertices {
		v.coord(fmt.Sprintf("%s vertex %d", where, j), vert.Position)
		if !finite(vert.UV.X) || !finite(vert.UV.Y) {
			v.addf("%s vertex %d has invalid uv %v", where, j, vert.UV)
		}
	}

	for j := range r.Faces {
		f := &r.Faces[j]
		fw := fmt.Sprintf("%s face %d", where, j)
		if n := len(f.Indices); n != 3 && n != 4 {
			v.addf("%s has %d corners, want 3 or 4", fw, n)
		}
		for _, idx := range f.Indices {
			if idx < 0 || idx >= len(r.Vertices) {
				v.addf("%s references vertex %d of %d", fw, idx, len(r.Vertices))
			}
		}
		if f.Room != r.ID {
			v.addf("%s is tagged with room %d", fw, f.Room)
		}
		if f.Texture != render.NoTexture && !l.Textures.Valid(f.Texture) {
			v.addf("%s references missing texture %d", fw, f.Texture)
		}
		if f.Blend < render.BlendOpaque || f.Blend > render.BlendAddQuarter {
			v.addf("%s has unknown blend mode %d", fw, int(f.Blend))
		}
		if f.Kind < KindWall || f.Kind > KindCeiling {
			v.addf("%s has unknown kind %d", fw, int(f.Kind))
		}
	}

	if len(r.Portals) > MaxPortals {
		v.addf("%s has %d portals, limit %d", where, len(r.Portals), MaxPortals)
	}
	for j := range r.Portals {
		p := &r.Portals[j]
		pw := fmt.Sprintf("%s portal %d", where, j)
		if p.From != r.ID {
			v.addf("%s leaves from room %d", pw, p.From)
		}
		switch {
		case p.To == Exterior:
		case !l.HasRoom(p.To):
			v.addf("%s targets missing room %d", pw, p.To)
		case p.To == r.ID:
			v.addf("%s targets its own room", pw)
		}
		if len(p.Vertices) < 3 {
			v.addf("%s has %d vertices, want at least 3", pw, len(p.Vertices))
		}
		for k, pv := range p.Vertices {
			v.coord(fmt.Sprintf("%s vertex %d", pw, k), pv)
		}
		v.coord(pw+" normal", p.Normal)
		if p.Normal.LenSq() < 1e-12 {
			v.addf("%s has a zero normal", pw)
		}
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
