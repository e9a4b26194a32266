// Package model builds procedural skinned rigs: a node hierarchy, its bone
// table and the bound mesh, ready to hand to a scene.
package model

import (
	"github.com/Faultbox/skinview/internal/engine/node"
	"github.com/Faultbox/skinview/internal/engine/scene"
	"github.com/Faultbox/skinview/pkg/math"
)

// CyclePeriod is the length in seconds of the built-in swing animation.
const CyclePeriod = 4.0

// Rig is a ready-to-tick skinned model.
type Rig struct {
	// Root is an externally driven turntable above the whole rig.
	Root    *node.Node
	Control *node.RotationControl

	// Base is the first bone and the root of the chained animation clocks.
	Base *node.Node

	// Bones are in binding order.
	Bones  []*node.Node
	Mesh   *scene.Mesh
	Bounds Bounds
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// BoundsOf returns the box enclosing points. An empty slice yields a zero box.
func BoundsOf(points []math.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns half the diagonal.
func (b Bounds) Radius() float32 {
	return b.Size().Length() * 0.5
}
