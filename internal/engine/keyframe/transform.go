package keyframe

import (
	"fmt"

	"github.com/Faultbox/skinview/pkg/math"
)

// TransformTrack animates a full affine transform from three independent
// channels: translation, rotation and uniform scale.
type TransformTrack struct {
	translate *Track[math.Vec3]
	rotate    *Track[math.Quat]
	scale     *Track[float32]
}

// NewTransformTrack builds the three channel tracks. Rotation always uses
// spherical interpolation; translation and scale interpolate linearly.
func NewTransformTrack(translate []Sample[math.Vec3], rotate []Sample[math.Quat], scale []Sample[float32]) (*TransformTrack, error) {
	t, err := NewVec3(translate)
	if err != nil {
		return nil, fmt.Errorf("translation channel: %w", err)
	}
	r, err := NewQuat(rotate)
	if err != nil {
		return nil, fmt.Errorf("rotation channel: %w", err)
	}
	s, err := NewScalar(scale)
	if err != nil {
		return nil, fmt.Errorf("scale channel: %w", err)
	}
	return &TransformTrack{translate: t, rotate: r, scale: s}, nil
}

// StaticTransform builds a track holding a single pose at time 0.
func StaticTransform(t math.Vec3, q math.Quat, s float32) *TransformTrack {
	tr, err := NewTransformTrack(
		[]Sample[math.Vec3]{{Value: t}},
		[]Sample[math.Quat]{{Value: q}},
		[]Sample[float32]{{Value: s}},
	)
	if err != nil {
		// One finite sample per channel cannot fail.
		panic(err)
	}
	return tr
}

// Evaluate returns Translate(t) * Rotate(q) * Scale(s) at time: the local
// frame is rotated and scaled before being translated.
func (tt *TransformTrack) Evaluate(time float64) (math.Mat4, error) {
	t, q, s, err := tt.Pose(time)
	if err != nil {
		return math.Mat4{}, err
	}
	return math.TranslateVec3(t).Mul(q.ToMat4()).Mul(math.UniformScale(s)), nil
}

// Pose returns the raw channel values at time.
func (tt *TransformTrack) Pose(time float64) (math.Vec3, math.Quat, float32, error) {
	t, err := tt.translate.Value(time)
	if err != nil {
		return math.Vec3{}, math.Quat{}, 0, err
	}
	q, err := tt.rotate.Value(time)
	if err != nil {
		return math.Vec3{}, math.Quat{}, 0, err
	}
	s, err := tt.scale.Value(time)
	if err != nil {
		return math.Vec3{}, math.Quat{}, 0, err
	}
	return t, q, s, nil
}

// Duration returns the latest end time across the three channels.
func (tt *TransformTrack) Duration() float64 {
	return max(tt.translate.End(), tt.rotate.End(), tt.scale.End())
}
