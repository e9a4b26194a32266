// Package dump evaluates a rig headlessly and writes bone and skin matrices
// as YAML.
package dump

import (
	"errors"
	"fmt"
	"io"
	gomath "math"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skinview/internal/engine/keyframe"
	"github.com/Faultbox/skinview/internal/engine/model"
	"github.com/Faultbox/skinview/internal/engine/scene"
	"github.com/Faultbox/skinview/pkg/math"
)

// MaxFrames bounds the number of frames a range may produce.
const MaxFrames = 100000

// ErrRange is returned for a time range that cannot be sampled.
var ErrRange = errors.New("dump: invalid time range")

// Frame is one evaluated instant.
type Frame struct {
	Time     float64  `yaml:"time"`
	Bones    []Bone   `yaml:"bones"`
	Vertices []Vertex `yaml:"vertices,omitempty"`
}

// Bone is a bone's world transform and its skinning matrix (world * offset),
// both column-major.
type Bone struct {
	Name  string      `yaml:"name"`
	World [16]float32 `yaml:"world,flow"`
	Skin  [16]float32 `yaml:"skin,flow"`
}

// Vertex is the skinning result of one vertex.
type Vertex struct {
	Index      int         `yaml:"index"`
	Rest       [3]float32  `yaml:"rest,flow"`
	Position   [3]float32  `yaml:"position,flow"`
	Influences []Influence `yaml:"influences"`
	Skin       [16]float32 `yaml:"skin,flow"`
}

// Influence names a bone and its weight on a vertex.
type Influence struct {
	Bone   string  `yaml:"bone"`
	Weight float32 `yaml:"weight"`
}

// Dumper ticks a rig and snapshots the requested vertices.
type Dumper struct {
	rig      *model.Rig
	scene    *scene.Scene
	vertices []int
	bones    []math.Mat4
}

// New prepares a dumper for rig. vertices lists the vertex indices to report.
func New(rig *model.Rig, workers int, vertices []int) (*Dumper, error) {
	n := rig.Mesh.Binding.VertexCount()
	for _, v := range vertices {
		if v < 0 || v >= n {
			return nil, fmt.Errorf("vertex %d out of range [0, %d)", v, n)
		}
	}
	s, err := scene.New(rig.Root, scene.Config{Workers: workers})
	if err != nil {
		return nil, err
	}
	if err := s.AddMesh(rig.Mesh); err != nil {
		return nil, err
	}
	return &Dumper{rig: rig, scene: s, vertices: vertices}, nil
}

// Frame evaluates the rig at now.
func (d *Dumper) Frame(now float64) (Frame, error) {
	f, err := d.scene.Tick(now, nil)
	if err != nil {
		return Frame{}, err
	}
	b := d.rig.Mesh.Binding
	skin := f.Skins[0]

	out := Frame{Time: now, Bones: make([]Bone, b.BoneCount())}
	d.bones = b.BoneMatrices(d.bones)
	for i := range out.Bones {
		n, _ := b.Bone(i)
		out.Bones[i] = Bone{Name: n.Name(), World: n.World(), Skin: d.bones[i]}
	}

	for _, v := range d.vertices {
		vx := Vertex{
			Index:    v,
			Rest:     d.rig.Mesh.Rest[v].Array(),
			Position: skin.Positions[v].Array(),
			Skin:     skin.Matrices[v],
		}
		for _, inf := range b.Influences(v) {
			if inf.Weight == 0 {
				continue
			}
			n, _ := b.Bone(inf.Bone)
			vx.Influences = append(vx.Influences, Influence{Bone: n.Name(), Weight: inf.Weight})
		}
		out.Vertices = append(out.Vertices, vx)
	}
	return out, nil
}

// Range evaluates the rig at from, from+step, ... up to and including to.
func (d *Dumper) Range(from, to, step float64) ([]Frame, error) {
	times, err := Times(from, to, step)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, 0, len(times))
	for _, t := range times {
		f, err := d.Frame(t)
		if err != nil {
			return nil, fmt.Errorf("frame at %v: %w", t, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// Times returns the sample times of a range. A time within a millionth of
// a step of to counts as reaching it.
func Times(from, to, step float64) ([]float64, error) {
	switch {
	case !keyframe.IsFinite(from) || !keyframe.IsFinite(to) || !keyframe.IsFinite(step):
		return nil, fmt.Errorf("%w: non-finite bound", ErrRange)
	case step <= 0:
		return nil, fmt.Errorf("%w: step %v", ErrRange, step)
	case to < from:
		return nil, fmt.Errorf("%w: %v > %v", ErrRange, from, to)
	}
	span := gomath.Floor((to-from)/step + 1e-6)
	if span >= MaxFrames {
		return nil, fmt.Errorf("%w: more than %d frames", ErrRange, MaxFrames)
	}
	n := int(span) + 1
	times := make([]float64, n)
	for i := range times {
		times[i] = from + float64(i)*step
	}
	return times, nil
}

// Write encodes frames as a YAML stream, one document per frame.
func Write(w io.Writer, frames []Frame) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return enc.Close()
}
