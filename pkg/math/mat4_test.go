package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestMulMatchesMathGL(t *testing.T) {
	a := Translate(1, -2, 3).Mul(RotateAxis(Vec3{Y: 1}, 0.7))
	b := Scale(2, 3, 4).Mul(RotateAxis(Vec3{X: 1}, -1.2))

	ga := mgl32.Translate3D(1, -2, 3).Mul4(mgl32.HomogRotate3D(0.7, mgl32.Vec3{0, 1, 0}))
	gb := mgl32.Scale3D(2, 3, 4).Mul4(mgl32.HomogRotate3D(-1.2, mgl32.Vec3{1, 0, 0}))

	got := a.Mul(b)
	want := Mat4(ga.Mul4(gb))
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Mul: got %v, want %v", got, want)
	}
}

func TestMulIsNotCommutativeForTRS(t *testing.T) {
	ts := Translate(1, 0, 0).Mul(UniformScale(2))
	st := UniformScale(2).Mul(Translate(1, 0, 0))

	if got := ts.Translation(); got != (Vec3{1, 0, 0}) {
		t.Errorf("T*S translation: got %v, want (1, 0, 0)", got)
	}
	if got := st.Translation(); got != (Vec3{2, 0, 0}) {
		t.Errorf("S*T translation: got %v, want (2, 0, 0)", got)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
	if UniformScale(3) != Scale(3, 3, 3) {
		t.Error("UniformScale(3) should equal Scale(3, 3, 3)")
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30)
	if got := m.TransformDirection(Vec3{1, 0, 0}); got != (Vec3{1, 0, 0}) {
		t.Errorf("TransformDirection: got %v, want (1, 0, 0)", got)
	}
}

func TestRotateAxisY90(t *testing.T) {
	m := RotateAxis(Vec3{Y: 1}, float32(math.Pi/2))
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 0.001 || abs(result.Y) > 0.001 || abs(result.Z+1) > 0.001 {
		t.Errorf("RotateAxis Y 90: got %v, want (0, 0, -1)", result)
	}
}

func TestAddAndMulScalar(t *testing.T) {
	a := Translate(1, 2, 3)
	got := a.MulScalar(0.25).Add(a.MulScalar(0.75))
	if !got.ApproxEqual(a, 1e-6) {
		t.Errorf("0.25A + 0.75A: got %v, want %v", got, a)
	}

	var zero Mat4
	if got := zero.AddScaled(a, 0.5); !got.ApproxEqual(a.MulScalar(0.5), 0) {
		t.Errorf("AddScaled: got %v, want %v", got, a.MulScalar(0.5))
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateAxis(Vec3{Z: 1}, 0.3)).Mul(UniformScale(2))
	got := m.Mul(m.Inverse())
	if !got.ApproxEqual(Identity(), 1e-5) {
		t.Errorf("M * M^-1: got %v, want identity", got)
	}

	want := Mat4(mgl32.Mat4(m).Inv())
	if !m.Inverse().ApproxEqual(want, 1e-5) {
		t.Errorf("Inverse: got %v, want %v", m.Inverse(), want)
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	if zero.Inverse() != Identity() {
		t.Error("Inverse of a singular matrix should be identity")
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(1.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})

	// The eye lands at the view-space origin.
	p := m.TransformPoint(eye)
	if abs(p.X) > 1e-5 || abs(p.Y) > 1e-5 || abs(p.Z) > 1e-5 {
		t.Errorf("LookAt eye: got %v, want origin", p)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
