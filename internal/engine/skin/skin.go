// Package skin implements linear blend skinning.
//
// A Binding associates each vertex of a mesh with up to MaxInfluences bones
// and evaluates per-vertex skin matrices from the bones' current world
// transforms. Bones are non-owning references into a node tree; the tree must
// have been propagated for the current tick before a Binding is evaluated.
package skin

import (
	"errors"
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/skinview/internal/engine/node"
	"github.com/Faultbox/skinview/pkg/math"
)

const (
	// MaxBones is the largest bone table a binding accepts.
	MaxBones = 128
	// MaxInfluences is the number of bones retained per vertex.
	MaxInfluences = 4
)

var (
	// ErrTooManyBones is returned for a bone table larger than MaxBones.
	ErrTooManyBones = errors.New("skin: too many bones")
	// ErrBoneMismatch is returned when bone nodes and offsets differ in length.
	ErrBoneMismatch = errors.New("skin: bone nodes and offsets differ in length")
	// ErrNilBone is returned for a bone without a node.
	ErrNilBone = errors.New("skin: nil bone node")
	// ErrVertexRange is returned for an influence on a vertex outside the mesh.
	ErrVertexRange = errors.New("skin: vertex index out of range")
	// ErrBoneRange is returned for an influence naming an unknown bone.
	ErrBoneRange = errors.New("skin: bone index out of range")
	// ErrWeightRange is returned for a weight outside [0, 1] or NaN.
	ErrWeightRange = errors.New("skin: weight outside [0, 1]")
	// ErrVertexCount is returned for a negative vertex count or a vertex
	// buffer whose length does not match the binding.
	ErrVertexCount = errors.New("skin: vertex count mismatch")
)

// Influence is a single (bone, weight) pair of a vertex.
type Influence struct {
	Bone   int
	Weight float32
}

// BoneWeight is one entry of a bone's influence list.
type BoneWeight struct {
	Vertex int
	Weight float32
}

// Bone describes one bone of a mesh as an asset loader sees it: the node
// driving it, its inverse bind pose and the vertices it influences.
type Bone struct {
	Node    *node.Node
	Offset  math.Mat4
	Weights []BoneWeight
}

// Binding is the bind-time skinning table of a single mesh. It is immutable
// after construction.
type Binding struct {
	nodes    []*node.Node
	offsets  []math.Mat4
	vertices [][MaxInfluences]Influence
}

// Bind builds a binding from per-bone influence lists. For each vertex the
// candidates from all bones are sorted by descending weight and only the
// strongest MaxInfluences are kept. Retained weights are not renormalized.
func Bind(vertexCount int, bones []Bone) (*Binding, error) {
	if len(bones) > MaxBones {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBones, len(bones), MaxBones)
	}
	if vertexCount < 0 {
		return nil, fmt.Errorf("%w: %d vertices", ErrVertexCount, vertexCount)
	}

	nodes := make([]*node.Node, len(bones))
	offsets := make([]math.Mat4, len(bones))
	candidates := make([][]Influence, vertexCount)

	for id, b := range bones {
		nodes[id] = b.Node
		offsets[id] = b.Offset
		for _, w := range b.Weights {
			if w.Vertex < 0 || w.Vertex >= vertexCount {
				return nil, fmt.Errorf("bone %d: %w: %d", id, ErrVertexRange, w.Vertex)
			}
			if !validWeight(w.Weight) {
				return nil, fmt.Errorf("bone %d, vertex %d: %w: %v", id, w.Vertex, ErrWeightRange, w.Weight)
			}
			candidates[w.Vertex] = setInfluence(candidates[w.Vertex], Influence{Bone: id, Weight: w.Weight})
		}
	}

	vertices := make([][MaxInfluences]Influence, vertexCount)
	for v, c := range candidates {
		vertices[v] = Truncate(c)
	}
	return NewBinding(nodes, offsets, vertices)
}

// setInfluence adds inf to list, replacing an earlier entry for the same bone.
func setInfluence(list []Influence, inf Influence) []Influence {
	for i := range list {
		if list[i].Bone == inf.Bone {
			list[i] = inf
			return list
		}
	}
	return append(list, inf)
}

func validWeight(w float32) bool {
	return !gomath.IsNaN(float64(w)) && w >= 0 && w <= 1
}

// Truncate keeps the MaxInfluences highest-weight candidates. Ties keep their
// input order. Unfilled slots are {Bone: 0, Weight: 0}.
func Truncate(candidates []Influence) [MaxInfluences]Influence {
	sorted := make([]Influence, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })

	var out [MaxInfluences]Influence
	copy(out[:], sorted)
	return out
}

// NewBinding builds a binding from per-vertex influence tables that are
// already reduced to MaxInfluences entries.
func NewBinding(nodes []*node.Node, offsets []math.Mat4, vertices [][MaxInfluences]Influence) (*Binding, error) {
	if len(nodes) > MaxBones {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBones, len(nodes), MaxBones)
	}
	if len(nodes) != len(offsets) {
		return nil, fmt.Errorf("%w: %d nodes, %d offsets", ErrBoneMismatch, len(nodes), len(offsets))
	}
	for id, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("bone %d: %w", id, ErrNilBone)
		}
	}
	for v, infs := range vertices {
		for _, inf := range infs {
			if inf.Weight == 0 {
				continue
			}
			if inf.Bone < 0 || inf.Bone >= len(nodes) {
				return nil, fmt.Errorf("vertex %d: %w: %d", v, ErrBoneRange, inf.Bone)
			}
			if !validWeight(inf.Weight) {
				return nil, fmt.Errorf("vertex %d: %w: %v", v, ErrWeightRange, inf.Weight)
			}
		}
	}

	return &Binding{
		nodes:    append([]*node.Node(nil), nodes...),
		offsets:  append([]math.Mat4(nil), offsets...),
		vertices: append([][MaxInfluences]Influence(nil), vertices...),
	}, nil
}

// BoneCount returns the number of bones.
func (b *Binding) BoneCount() int {
	return len(b.nodes)
}

// VertexCount returns the number of bound vertices.
func (b *Binding) VertexCount() int {
	return len(b.vertices)
}

// Bone returns the node and offset of bone id.
func (b *Binding) Bone(id int) (*node.Node, math.Mat4) {
	return b.nodes[id], b.offsets[id]
}

// Influences returns the retained influences of vertex v.
func (b *Binding) Influences(v int) [MaxInfluences]Influence {
	return b.vertices[v]
}

// BoneMatrices writes world * offset for every bone into dst, growing it as
// needed, and returns it.
func (b *Binding) BoneMatrices(dst []math.Mat4) []math.Mat4 {
	dst = resize(dst, len(b.nodes))
	for i, n := range b.nodes {
		dst[i] = n.World().Mul(b.offsets[i])
	}
	return dst
}

// SkinMatrix returns the blended skin matrix of vertex v. A vertex with no
// weight yields the zero matrix.
func (b *Binding) SkinMatrix(v int) math.Mat4 {
	var m math.Mat4
	for _, inf := range b.vertices[v] {
		if inf.Weight == 0 {
			continue
		}
		n := b.nodes[inf.Bone]
		m = m.AddScaled(n.World().Mul(b.offsets[inf.Bone]), inf.Weight)
	}
	return m
}

// SkinMatrices writes the skin matrix of every vertex into dst, growing it as
// needed, and returns it. Bone matrices are computed once per call.
func (b *Binding) SkinMatrices(dst []math.Mat4) []math.Mat4 {
	bones := b.BoneMatrices(nil)
	dst = resize(dst, len(b.vertices))
	for v, infs := range b.vertices {
		dst[v] = blend(bones, infs)
	}
	return dst
}

// Deform writes the skinned position of every rest vertex into dst, growing
// it as needed, and returns it together with the skin matrices used.
func (b *Binding) Deform(rest []math.Vec3, dst []math.Vec3, skins []math.Mat4) ([]math.Vec3, []math.Mat4, error) {
	if len(rest) != len(b.vertices) {
		return dst, skins, fmt.Errorf("%w: %d rest positions, %d bound vertices", ErrVertexCount, len(rest), len(b.vertices))
	}
	skins = b.SkinMatrices(skins)
	dst = resize(dst, len(rest))
	for v, p := range rest {
		dst[v] = skins[v].TransformPoint(p)
	}
	return dst, skins, nil
}

func blend(bones []math.Mat4, infs [MaxInfluences]Influence) math.Mat4 {
	var m math.Mat4
	for _, inf := range infs {
		if inf.Weight != 0 {
			m = m.AddScaled(bones[inf.Bone], inf.Weight)
		}
	}
	return m
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
