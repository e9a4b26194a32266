// Package scene drives one animation tick over a node tree and its skinned
// meshes: drivers are evaluated and world transforms propagated first, then
// every mesh is skinned from the freshly computed bone transforms.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/skinview/internal/engine/keyframe"
	"github.com/Faultbox/skinview/internal/engine/node"
	"github.com/Faultbox/skinview/internal/engine/skin"
	"github.com/Faultbox/skinview/internal/logger"
	"github.com/Faultbox/skinview/pkg/math"
)

// Config contains scene configuration options.
type Config struct {
	// Workers bounds how many meshes are skinned concurrently. Values below 2
	// skin sequentially on the calling goroutine.
	Workers int
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		Workers: 1,
	}
}

// Mesh is a skinned mesh in bind pose.
type Mesh struct {
	Name    string
	Binding *skin.Binding
	Rest    []math.Vec3
	Colors  []math.Vec3
	Indices []uint32
}

// Skin is the per-tick output for one mesh. Slices are indexed by vertex.
type Skin struct {
	Mesh      *Mesh
	Matrices  []math.Mat4
	Positions []math.Vec3
}

// Frame is the output of a tick. It is reused by the next Tick call.
type Frame struct {
	Time  float64
	Skins []Skin
}

// Scene owns a node tree and the meshes skinned against it.
type Scene struct {
	config Config
	root   *node.Node
	meshes []*Mesh
	frame  Frame
}

// New creates a scene around root.
func New(root *node.Node, cfg Config) (*Scene, error) {
	if root == nil {
		return nil, errors.New("scene: nil root")
	}
	return &Scene{
		config: cfg,
		root:   root,
	}, nil
}

// Root returns the root node.
func (s *Scene) Root() *node.Node {
	return s.root
}

// Meshes returns the registered meshes.
func (s *Scene) Meshes() []*Mesh {
	return s.meshes
}

// AddMesh registers a skinned mesh. Rest positions must match the binding.
func (s *Scene) AddMesh(m *Mesh) error {
	if m.Binding == nil {
		return fmt.Errorf("mesh %q: nil binding", m.Name)
	}
	if n := m.Binding.VertexCount(); len(m.Rest) != n {
		return fmt.Errorf("mesh %q: %w: %d rest positions, %d bound vertices",
			m.Name, skin.ErrVertexCount, len(m.Rest), n)
	}
	s.meshes = append(s.meshes, m)
	s.frame.Skins = append(s.frame.Skins, Skin{Mesh: m})

	logger.Debug("mesh added",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(m.Rest)),
		zap.Int("bones", m.Binding.BoneCount()),
	)
	return nil
}

// Restart resets the animation clock of the root and its chained subtree.
func (s *Scene) Restart(now float64) {
	s.root.ResetTime(now)
}

// Tick evaluates the scene at now. visit, if non-nil, sees every node in
// pre-order with its world transform and merged parameters.
func (s *Scene) Tick(now float64, visit node.Visitor) (*Frame, error) {
	if !keyframe.IsFinite(now) {
		return nil, keyframe.ErrInvalidTime
	}
	if err := s.root.Propagate(math.Identity(), nil, now, visit); err != nil {
		return nil, fmt.Errorf("propagate: %w", err)
	}

	s.frame.Time = now
	if s.config.Workers < 2 || len(s.meshes) < 2 {
		for i := range s.frame.Skins {
			if err := s.skin(i); err != nil {
				return nil, err
			}
		}
		return &s.frame, nil
	}

	// Each goroutine writes only its own Skins slot; bone world transforms
	// are read-only until the next Propagate.
	var g errgroup.Group
	g.SetLimit(s.config.Workers)
	for i := range s.frame.Skins {
		g.Go(func() error { return s.skin(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s.frame, nil
}

func (s *Scene) skin(i int) error {
	out := &s.frame.Skins[i]
	pos, mats, err := out.Mesh.Binding.Deform(out.Mesh.Rest, out.Positions, out.Matrices)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", out.Mesh.Name, err)
	}
	out.Positions = pos
	out.Matrices = mats
	return nil
}
