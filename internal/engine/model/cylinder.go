package model

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/skinview/internal/engine/keyframe"
	"github.com/Faultbox/skinview/internal/engine/node"
	"github.com/Faultbox/skinview/internal/engine/scene"
	"github.com/Faultbox/skinview/internal/engine/skin"
	"github.com/Faultbox/skinview/internal/logger"
	"github.com/Faultbox/skinview/pkg/math"
)

// ErrInvalidOptions is returned for cylinder options that cannot produce a mesh.
var ErrInvalidOptions = errors.New("model: invalid cylinder options")

// CylinderOptions controls the tessellation of the skinned cylinder.
type CylinderOptions struct {
	Sections int     // rings along the X axis, minus one
	Quarters int     // vertices per ring
	Radius   float32 // ring radius
}

// DefaultCylinderOptions returns the standard demo tessellation.
func DefaultCylinderOptions() CylinderOptions {
	return CylinderOptions{
		Sections: 20,
		Quarters: 20,
		Radius:   1,
	}
}

// Validate checks that the options describe a closed, non-degenerate tube.
func (o CylinderOptions) Validate() error {
	switch {
	case o.Sections < 1:
		return fmt.Errorf("%w: sections %d < 1", ErrInvalidOptions, o.Sections)
	case o.Quarters < 3:
		return fmt.Errorf("%w: quarters %d < 3", ErrInvalidOptions, o.Quarters)
	case !(o.Radius > 0):
		return fmt.Errorf("%w: radius %v", ErrInvalidOptions, o.Radius)
	}
	return nil
}

// Cylinder builds a three-bone skinned tube lying along X, centered on the
// origin. The hierarchy is:
//
//	turntable (external)
//	  base (keyframed, chained)          bone 0
//	    forearm (keyframed, chained)     bone 1
//	      pivot (keyframed)
//	        hand (keyframed, chained)    bone 2
//
// Base and forearm swing away from rest and back over CyclePeriod seconds.
// The pivot swings the hand about a point left of the origin. Each vertex
// blends the bones with smoothstep ramps along X: the hand owns the left end,
// the forearm the middle and the base the right end.
func Cylinder(opts CylinderOptions) (*Rig, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	reach := float32(opts.Sections) * 3 / 8

	base, err := swing("base", math.Vec3{}, math.QuatIdentity(), true)
	if err != nil {
		return nil, err
	}
	forearm, err := swing("forearm", math.Vec3{},
		math.QuatFromEuler(math.Radians(45), math.Radians(-100), math.Radians(90)), true)
	if err != nil {
		return nil, err
	}
	pivot, err := swing("pivot", math.Vec3{X: -reach},
		math.QuatFromEuler(math.Radians(-45), math.Radians(40), math.Radians(90)), false)
	if err != nil {
		return nil, err
	}
	hand := node.NewAnimated("hand", keyframe.StaticTransform(math.Vec3{X: reach}, math.QuatIdentity(), 1), true)

	control := node.NewRotationControl(math.Vec3{Y: 1}, 5)
	root := node.New("turntable")
	root.SetController(control)

	root.Add(base)
	base.Add(forearm)
	forearm.Add(pivot)
	pivot.Add(hand)

	bones := []*node.Node{base, forearm, hand}

	// Offsets are the inverse bind pose: the rig evaluated at its own time zero.
	if err := root.Propagate(math.Identity(), nil, 0, nil); err != nil {
		return nil, fmt.Errorf("bind pose: %w", err)
	}

	rest, colors, weights := tube(opts)
	skinBones := make([]skin.Bone, len(bones))
	for i, b := range bones {
		skinBones[i] = skin.Bone{
			Node:    b,
			Offset:  b.World().Inverse(),
			Weights: weights[i],
		}
	}
	binding, err := skin.Bind(len(rest), skinBones)
	if err != nil {
		return nil, fmt.Errorf("bind cylinder: %w", err)
	}

	rig := &Rig{
		Root:    root,
		Control: control,
		Base:    base,
		Bones:   bones,
		Mesh: &scene.Mesh{
			Name:    "cylinder",
			Binding: binding,
			Rest:    rest,
			Colors:  colors,
			Indices: tubeIndices(opts),
		},
		Bounds: BoundsOf(rest),
	}

	logger.Debug("cylinder rig built",
		zap.Int("sections", opts.Sections),
		zap.Int("quarters", opts.Quarters),
		zap.Int("vertices", len(rest)),
		zap.Int("triangles", len(rig.Mesh.Indices)/3),
		zap.Int("bones", len(bones)),
	)
	return rig, nil
}

// swing builds a node that rotates from rest to peak at half the cycle and
// back to rest at the end.
func swing(name string, offset math.Vec3, peak math.Quat, chained bool) (*node.Node, error) {
	half := CyclePeriod / 2
	track, err := keyframe.NewTransformTrack(
		[]keyframe.Sample[math.Vec3]{{Time: 0, Value: offset}},
		[]keyframe.Sample[math.Quat]{
			{Time: 0, Value: math.QuatIdentity()},
			{Time: half, Value: peak},
			{Time: CyclePeriod, Value: math.QuatIdentity()},
		},
		[]keyframe.Sample[float32]{{Time: 0, Value: 1}},
	)
	if err != nil {
		return nil, fmt.Errorf("%s track: %w", name, err)
	}
	return node.NewAnimated(name, track, chained), nil
}

// tube returns ring-major rest positions, per-vertex colors and the per-bone
// influence lists of the cylinder.
func tube(opts CylinderOptions) ([]math.Vec3, []math.Vec3, [3][]skin.BoneWeight) {
	n := (opts.Sections + 1) * opts.Quarters
	rest := make([]math.Vec3, 0, n)
	colors := make([]math.Vec3, 0, n)
	var weights [3][]skin.BoneWeight

	half := float32(opts.Sections) / 2
	for ring := 0; ring <= opts.Sections; ring++ {
		w := ramp(ring, opts.Sections)
		for q := 0; q < opts.Quarters; q++ {
			angle := 2 * gomath.Pi * float64(q) / float64(opts.Quarters)
			v := len(rest)
			rest = append(rest, math.Vec3{
				X: float32(ring) - half,
				Y: opts.Radius * float32(gomath.Cos(angle)),
				Z: opts.Radius * float32(gomath.Sin(angle)),
			})
			colors = append(colors, math.Vec3{X: w[0], Y: w[1], Z: w[2]})
			for bone, weight := range w {
				if weight > 0 {
					weights[bone] = append(weights[bone], skin.BoneWeight{Vertex: v, Weight: weight})
				}
			}
		}
	}
	return rest, colors, weights
}

// ramp returns the base, forearm and hand weights of ring. They sum to one.
func ramp(ring, sections int) [3]float32 {
	x := float32(ring)
	lo := float32(sections) / 4
	hi := 3 * float32(sections) / 4

	switch {
	case x <= lo:
		a := smoothstep(x / lo)
		return [3]float32{0, a, 1 - a}
	case x >= hi:
		return [3]float32{1, 0, 0}
	default:
		a := smoothstep((x - lo) / (hi - lo))
		return [3]float32{a, 1 - a, 0}
	}
}

func smoothstep(x float32) float32 {
	return x * x * (3 - 2*x)
}

// tubeIndices returns two counter-clockwise triangles per quad, wrapping
// around each ring.
func tubeIndices(opts CylinderOptions) []uint32 {
	q := opts.Quarters
	indices := make([]uint32, 0, opts.Sections*q*6)
	for ring := 0; ring < opts.Sections; ring++ {
		for a := 0; a < q; a++ {
			r0c0 := uint32(ring*q + a)
			r1c0 := uint32((ring+1)*q + a)
			r0c1 := uint32(ring*q + (a+1)%q)
			r1c1 := uint32((ring+1)*q + (a+1)%q)
			indices = append(indices, r0c0, r0c1, r1c1, r0c0, r1c1, r1c0)
		}
	}
	return indices
}
