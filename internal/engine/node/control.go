package node

import "github.com/Faultbox/skinview/pkg/math"

// RotationControl is a Controller spinning about a fixed axis. Input handlers
// nudge the angle; the node picks it up on the next pass.
type RotationControl struct {
	Axis  math.Vec3
	Angle float32 // degrees
	Step  float32 // degrees per nudge
}

// NewRotationControl creates a control about axis, advancing step degrees per nudge.
func NewRotationControl(axis math.Vec3, step float32) *RotationControl {
	return &RotationControl{Axis: axis.Normalize(), Step: step}
}

// Nudge advances the angle by dir steps; dir is usually +1 or -1.
func (c *RotationControl) Nudge(dir int) {
	c.Angle += float32(dir) * c.Step
}

// Local implements Controller.
func (c *RotationControl) Local() math.Mat4 {
	return math.RotateAxis(c.Axis, math.Radians(c.Angle))
}
