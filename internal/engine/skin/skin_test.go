package skin

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skinview/internal/engine/node"
	"github.com/Faultbox/skinview/pkg/math"
)

func TestEndToEndArm(t *testing.T) {
	root := node.New("root")
	arm := node.New("arm")
	arm.SetLocal(math.Translate(0, 0, 5))
	root.Add(arm)

	b, err := Bind(1, []Bone{{
		Node:    arm,
		Offset:  math.Identity(),
		Weights: []BoneWeight{{Vertex: 0, Weight: 1}},
	}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	for _, now := range []float64{0, 0.5, 1234} {
		if err := root.Propagate(math.Identity(), nil, now, nil); err != nil {
			t.Fatalf("Propagate: %v", err)
		}
		if got, want := b.SkinMatrix(0), math.Translate(0, 0, 5); got != want {
			t.Errorf("t=%v skin matrix = %v, want %v", now, got, want)
		}
	}
}

func TestTruncateKeepsTopFour(t *testing.T) {
	candidates := []Influence{
		{Bone: 0, Weight: 0.05},
		{Bone: 1, Weight: 0.30},
		{Bone: 2, Weight: 0.10},
		{Bone: 3, Weight: 0.25},
		{Bone: 4, Weight: 0.02},
		{Bone: 5, Weight: 0.28},
	}
	got := Truncate(candidates)

	kept := map[int]float32{}
	for _, inf := range got {
		kept[inf.Bone] = inf.Weight
	}
	want := map[int]float32{1: 0.30, 5: 0.28, 3: 0.25, 2: 0.10}
	if len(kept) != len(want) {
		t.Fatalf("kept %v, want %v", kept, want)
	}
	for bone, w := range want {
		if kept[bone] != w {
			t.Errorf("bone %d weight = %v, want %v", bone, kept[bone], w)
		}
	}
	for _, dropped := range []int{0, 4} {
		if _, ok := kept[dropped]; ok {
			t.Errorf("bone %d should have been dropped", dropped)
		}
	}
	if candidates[0].Bone != 0 || candidates[5].Bone != 5 {
		t.Error("Truncate reordered its input")
	}
}

func TestTruncatePadsWithZero(t *testing.T) {
	got := Truncate([]Influence{{Bone: 7, Weight: 0.5}})
	want := [MaxInfluences]Influence{{Bone: 7, Weight: 0.5}}
	if got != want {
		t.Errorf("Truncate = %v, want %v", got, want)
	}
	if got := Truncate(nil); got != ([MaxInfluences]Influence{}) {
		t.Errorf("Truncate(nil) = %v, want zero slots", got)
	}
}

func TestBindDoesNotRenormalize(t *testing.T) {
	bones := make([]Bone, 6)
	weights := []float32{0.3, 0.2, 0.2, 0.1, 0.1, 0.1}
	for i := range bones {
		bones[i] = Bone{
			Node:    node.New(""),
			Offset:  math.Identity(),
			Weights: []BoneWeight{{Vertex: 0, Weight: weights[i]}},
		}
	}
	b, err := Bind(1, bones)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	var sum float32
	for _, inf := range b.Influences(0) {
		sum += inf.Weight
	}
	if sum < 0.79 || sum > 0.81 {
		t.Errorf("retained weight sum = %v, want 0.8", sum)
	}

	// With every bone at identity, the skin matrix is 0.8 * identity.
	m := b.SkinMatrix(0)
	if !m.ApproxEqual(math.Identity().MulScalar(0.8), 1e-6) {
		t.Errorf("skin matrix = %v, want 0.8 * I", m)
	}
}

func TestBindRepeatedEntryOverwrites(t *testing.T) {
	n := node.New("bone")
	b, err := Bind(2, []Bone{{
		Node:    n,
		Offset:  math.Identity(),
		Weights: []BoneWeight{{Vertex: 1, Weight: 0.2}, {Vertex: 1, Weight: 0.9}},
	}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	want := [MaxInfluences]Influence{{Bone: 0, Weight: 0.9}}
	if got := b.Influences(1); got != want {
		t.Errorf("Influences(1) = %v, want %v", got, want)
	}
	if got := b.Influences(0); got != ([MaxInfluences]Influence{}) {
		t.Errorf("Influences(0) = %v, want no influence", got)
	}
}

func TestZeroInfluenceIsZeroMatrix(t *testing.T) {
	n := node.New("bone")
	n.SetLocal(math.Translate(1, 2, 3))
	if err := n.Propagate(math.Identity(), nil, 0, nil); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	b, err := Bind(1, []Bone{{Node: n, Offset: math.Identity()}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := b.SkinMatrix(0); got != (math.Mat4{}) {
		t.Errorf("skin matrix = %v, want zero", got)
	}
}

func TestBlendMatchesMathGL(t *testing.T) {
	root := node.New("root")
	upper := node.New("upper")
	lower := node.New("lower")
	upper.SetLocal(math.RotateAxis(math.Vec3{Z: 1}, 0.6))
	lower.SetLocal(math.Translate(2, 0, 0).Mul(math.RotateAxis(math.Vec3{Y: 1}, -0.4)))
	root.Add(upper)
	upper.Add(lower)
	if err := root.Propagate(math.Identity(), nil, 0, nil); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	offUpper := math.Identity()
	offLower := math.Translate(-2, 0, 0)
	b, err := NewBinding(
		[]*node.Node{upper, lower},
		[]math.Mat4{offUpper, offLower},
		[][MaxInfluences]Influence{{{Bone: 0, Weight: 0.35}, {Bone: 1, Weight: 0.65}}},
	)
	if err != nil {
		t.Fatalf("NewBinding: %v", err)
	}

	gUpper := mgl32.Mat4(upper.World()).Mul4(mgl32.Mat4(offUpper))
	gLower := mgl32.Mat4(lower.World()).Mul4(mgl32.Mat4(offLower))
	want := math.Mat4(gUpper.Mul(0.35).Add(gLower.Mul(0.65)))

	if got := b.SkinMatrix(0); !got.ApproxEqual(want, 1e-5) {
		t.Errorf("SkinMatrix = %v, want %v", got, want)
	}
	if got := b.SkinMatrices(nil)[0]; !got.ApproxEqual(want, 1e-5) {
		t.Errorf("SkinMatrices[0] = %v, want %v", got, want)
	}
}

func TestBoneMatrices(t *testing.T) {
	n := node.New("bone")
	n.SetLocal(math.Translate(0, 3, 0))
	if err := n.Propagate(math.Identity(), nil, 0, nil); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	offset := math.Translate(0, -3, 0)
	b, err := NewBinding([]*node.Node{n}, []math.Mat4{offset}, nil)
	if err != nil {
		t.Fatalf("NewBinding: %v", err)
	}

	dst := make([]math.Mat4, 0, 4)
	got := b.BoneMatrices(dst)
	if len(got) != 1 || got[0] != math.Identity() {
		t.Errorf("BoneMatrices = %v, want [identity]", got)
	}
	if &got[:1][0] != &dst[:1][0] {
		t.Error("BoneMatrices should reuse dst capacity")
	}
}

func TestDeform(t *testing.T) {
	n := node.New("bone")
	n.SetLocal(math.Translate(0, 0, 5))
	if err := n.Propagate(math.Identity(), nil, 0, nil); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	b, err := Bind(2, []Bone{{
		Node:    n,
		Offset:  math.Identity(),
		Weights: []BoneWeight{{Vertex: 0, Weight: 1}, {Vertex: 1, Weight: 0.5}},
	}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	pos, skins, err := b.Deform([]math.Vec3{{X: 1}, {X: 2}}, nil, nil)
	if err != nil {
		t.Fatalf("Deform: %v", err)
	}
	if len(skins) != 2 {
		t.Fatalf("len(skins) = %d, want 2", len(skins))
	}
	if pos[0] != (math.Vec3{X: 1, Z: 5}) {
		t.Errorf("pos[0] = %v, want (1, 0, 5)", pos[0])
	}
	// Half weight scales the whole homogeneous matrix, w included.
	if pos[1] != (math.Vec3{X: 2, Z: 5}) {
		t.Errorf("pos[1] = %v, want (2, 0, 5)", pos[1])
	}

	if _, _, err := b.Deform([]math.Vec3{{}}, nil, nil); !errors.Is(err, ErrVertexCount) {
		t.Errorf("expected ErrVertexCount, got %v", err)
	}
}

func TestBindErrors(t *testing.T) {
	bone := func() Bone { return Bone{Node: node.New(""), Offset: math.Identity()} }

	tooMany := make([]Bone, MaxBones+1)
	for i := range tooMany {
		tooMany[i] = bone()
	}
	if _, err := Bind(1, tooMany); !errors.Is(err, ErrTooManyBones) {
		t.Errorf("expected ErrTooManyBones, got %v", err)
	}

	exact := tooMany[:MaxBones]
	if _, err := Bind(1, exact); err != nil {
		t.Errorf("Bind with %d bones: %v", MaxBones, err)
	}

	if _, err := Bind(1, []Bone{{Offset: math.Identity()}}); !errors.Is(err, ErrNilBone) {
		t.Errorf("expected ErrNilBone, got %v", err)
	}

	bad := bone()
	bad.Weights = []BoneWeight{{Vertex: 3, Weight: 1}}
	if _, err := Bind(2, []Bone{bad}); !errors.Is(err, ErrVertexRange) {
		t.Errorf("expected ErrVertexRange, got %v", err)
	}

	heavy := bone()
	heavy.Weights = []BoneWeight{{Vertex: 0, Weight: 1.5}}
	if _, err := Bind(1, []Bone{heavy}); !errors.Is(err, ErrWeightRange) {
		t.Errorf("expected ErrWeightRange, got %v", err)
	}
}

func TestBindRejectsBadWeights(t *testing.T) {
	nan := float32(gomath.NaN())
	tests := []struct {
		name    string
		weights []float32
	}{
		{"nan among six", []float32{0.9, 0.8, 0.7, 0.6, nan, 0.95}},
		{"negative weight below the cut", []float32{0.9, 0.8, 0.7, 0.6, 0.5, -3}},
		{"infinite weight", []float32{float32(gomath.Inf(1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bones := make([]Bone, len(tt.weights))
			for i, w := range tt.weights {
				bones[i] = Bone{
					Node:    node.New(""),
					Offset:  math.Identity(),
					Weights: []BoneWeight{{Vertex: 0, Weight: w}},
				}
			}
			if _, err := Bind(1, bones); !errors.Is(err, ErrWeightRange) {
				t.Errorf("expected ErrWeightRange, got %v", err)
			}
		})
	}
}

func TestBindNegativeVertexCount(t *testing.T) {
	bones := []Bone{{Node: node.New(""), Offset: math.Identity()}}
	if _, err := Bind(-1, bones); !errors.Is(err, ErrVertexCount) {
		t.Errorf("expected ErrVertexCount, got %v", err)
	}
}

func TestNewBindingErrors(t *testing.T) {
	n := node.New("")
	if _, err := NewBinding([]*node.Node{n}, nil, nil); !errors.Is(err, ErrBoneMismatch) {
		t.Errorf("expected ErrBoneMismatch, got %v", err)
	}

	_, err := NewBinding([]*node.Node{n}, []math.Mat4{math.Identity()},
		[][MaxInfluences]Influence{{{Bone: 1, Weight: 0.5}}})
	if !errors.Is(err, ErrBoneRange) {
		t.Errorf("expected ErrBoneRange, got %v", err)
	}

	_, err = NewBinding([]*node.Node{n}, []math.Mat4{math.Identity()},
		[][MaxInfluences]Influence{{{Bone: 0, Weight: -0.1}}})
	if !errors.Is(err, ErrWeightRange) {
		t.Errorf("expected ErrWeightRange, got %v", err)
	}
}
