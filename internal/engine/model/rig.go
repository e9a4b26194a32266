package model

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skinview/internal/engine/keyframe"
	"github.com/Faultbox/skinview/internal/logger"
	"github.com/Faultbox/skinview/pkg/math"
)

// ErrNotKeyframed is returned when retargeting a bone that has no track.
var ErrNotKeyframed = errors.New("model: bone is not keyframed")

// Restart rewinds the chained animation clocks below the turntable to now.
func (r *Rig) Restart(now float64) {
	r.Root.ResetTime(now)
}

// Retarget replaces the track of bone with a two-key track that holds its
// pose at now and turns it to target over duration seconds. The bone's clock
// and those of its chained descendants restart at now.
func (r *Rig) Retarget(bone int, now float64, target math.Quat, duration float64) error {
	if bone < 0 || bone >= len(r.Bones) {
		return fmt.Errorf("retarget: bone %d out of range [0, %d)", bone, len(r.Bones))
	}
	if !keyframe.IsFinite(now) || !keyframe.IsFinite(duration) {
		return keyframe.ErrInvalidTime
	}
	if duration <= 0 {
		return fmt.Errorf("retarget: duration %v must be positive", duration)
	}

	n := r.Bones[bone]
	current := n.Track()
	if current == nil {
		return fmt.Errorf("retarget %q: %w", n.Name(), ErrNotKeyframed)
	}
	t, q, s, err := current.Pose(now - n.TimeOrigin())
	if err != nil {
		return fmt.Errorf("retarget %q: %w", n.Name(), err)
	}

	next, err := keyframe.NewTransformTrack(
		[]keyframe.Sample[math.Vec3]{{Time: 0, Value: t}},
		[]keyframe.Sample[math.Quat]{
			{Time: 0, Value: q},
			{Time: duration, Value: target.Normalize()},
		},
		[]keyframe.Sample[float32]{{Time: 0, Value: s}},
	)
	if err != nil {
		return fmt.Errorf("retarget %q: %w", n.Name(), err)
	}
	n.SetTrack(next)
	n.ResetTime(now)

	logger.Debug("bone retargeted",
		zap.String("bone", n.Name()),
		zap.Float64("at", now),
		zap.Float64("duration", duration),
	)
	return nil
}
