// Package camera frames a model for viewing.
package camera

import (
	gomath "math"

	"github.com/Faultbox/skinview/pkg/math"
)

// OrbitCamera looks at a center point from spherical coordinates around it.
type OrbitCamera struct {
	Center math.Vec3

	Distance float32
	Pitch    float32 // elevation above the XZ plane, radians
	Yaw      float32 // rotation about +Y, radians; 0 looks down -Z

	FovY float32 // radians
	Near float32
	Far  float32

	MinDistance     float32
	MaxDistance     float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a camera at a slight elevation.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        10,
		Pitch:           0.35,
		FovY:            math.Radians(45),
		Near:            0.1,
		Far:             1000,
		MinDistance:     0.5,
		MaxDistance:     500,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	return c.Center.Add(math.Vec3{
		X: c.Distance * float32(cp*gomath.Sin(float64(c.Yaw))),
		Y: c.Distance * float32(gomath.Sin(float64(c.Pitch))),
		Z: c.Distance * float32(cp*gomath.Cos(float64(c.Yaw))),
	})
}

// View returns the view matrix.
func (c *OrbitCamera) View() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// Projection returns the perspective matrix for aspect.
func (c *OrbitCamera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.Projection(aspect).Mul(c.View())
}

// FitSphere places the camera so a sphere of radius around center fills the
// vertical field of view with some margin. Limits are widened to match.
func (c *OrbitCamera) FitSphere(center math.Vec3, radius float32) {
	if radius <= 0 {
		radius = 1
	}
	c.Center = center
	half := gomath.Tan(float64(c.FovY) / 2)
	c.Distance = float32(float64(radius)/half) * 1.2

	c.MinDistance = radius * 0.5
	c.MaxDistance = c.Distance * 10
	c.Near = c.Distance / 100
	c.Far = c.Distance + radius*10
}

// HandleZoom scales the distance by delta scroll steps.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}
