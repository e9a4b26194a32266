// Package keyframe implements sparse time-sampled tracks and their interpolation.
package keyframe

import (
	"errors"
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/skinview/pkg/math"
)

var (
	// ErrNoSamples is returned when a track is built from zero samples.
	ErrNoSamples = errors.New("keyframe: track has no samples")
	// ErrDuplicateTime is returned when two samples share the same time.
	ErrDuplicateTime = errors.New("keyframe: duplicate sample time")
	// ErrInvalidTime is returned for NaN or infinite times.
	ErrInvalidTime = errors.New("keyframe: time is not finite")
)

// Sample is a single (time, value) pair. Time is in seconds.
type Sample[T any] struct {
	Time  float64
	Value T
}

// Interpolator blends a toward b; fraction is in [0, 1).
type Interpolator[T any] func(a, b T, fraction float32) T

// Track stores samples sorted by time and reconstructs values between them.
// A Track is immutable once built and safe for concurrent reads.
type Track[T any] struct {
	times  []float64
	values []T
	interp Interpolator[T]
}

// New builds a track from samples in any order.
func New[T any](samples []Sample[T], interp Interpolator[T]) (*Track[T], error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if interp == nil {
		return nil, errors.New("keyframe: nil interpolator")
	}

	sorted := make([]Sample[T], len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	tr := &Track[T]{
		times:  make([]float64, len(sorted)),
		values: make([]T, len(sorted)),
		interp: interp,
	}
	for i, s := range sorted {
		if !IsFinite(s.Time) {
			return nil, fmt.Errorf("sample %d: %w", i, ErrInvalidTime)
		}
		if i > 0 && s.Time == sorted[i-1].Time {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateTime, s.Time)
		}
		tr.times[i] = s.Time
		tr.values[i] = s.Value
	}
	return tr, nil
}

// Value returns the interpolated value at time. Times outside the sampled
// range clamp to the first or last sample.
func (tr *Track[T]) Value(time float64) (T, error) {
	if !IsFinite(time) {
		var zero T
		return zero, ErrInvalidTime
	}

	last := len(tr.times) - 1
	if time <= tr.times[0] {
		return tr.values[0], nil
	}
	if time >= tr.times[last] {
		return tr.values[last], nil
	}

	// First sample strictly after time; its predecessor brackets from below.
	i := sort.Search(len(tr.times), func(k int) bool { return tr.times[k] > time }) - 1
	if time == tr.times[i] {
		return tr.values[i], nil
	}

	fraction := (time - tr.times[i]) / (tr.times[i+1] - tr.times[i])
	return tr.interp(tr.values[i], tr.values[i+1], float32(fraction)), nil
}

// Len returns the number of samples.
func (tr *Track[T]) Len() int {
	return len(tr.times)
}

// Start returns the time of the first sample.
func (tr *Track[T]) Start() float64 {
	return tr.times[0]
}

// End returns the time of the last sample.
func (tr *Track[T]) End() float64 {
	return tr.times[len(tr.times)-1]
}

// Duration returns End - Start.
func (tr *Track[T]) Duration() float64 {
	return tr.End() - tr.Start()
}

// IsFinite reports whether t is neither NaN nor infinite.
func IsFinite(t float64) bool {
	return !gomath.IsNaN(t) && !gomath.IsInf(t, 0)
}

// LerpScalar linearly interpolates two scalars.
func LerpScalar(a, b, fraction float32) float32 {
	return a + fraction*(b-a)
}

// LerpVec3 linearly interpolates two vectors.
func LerpVec3(a, b math.Vec3, fraction float32) math.Vec3 {
	return a.Lerp(b, fraction)
}

// SlerpQuat spherically interpolates two unit quaternions along the short arc.
func SlerpQuat(a, b math.Quat, fraction float32) math.Quat {
	return a.Slerp(b, fraction)
}

// NewScalar builds a linearly interpolated scalar track.
func NewScalar(samples []Sample[float32]) (*Track[float32], error) {
	return New(samples, LerpScalar)
}

// NewVec3 builds a linearly interpolated vector track.
func NewVec3(samples []Sample[math.Vec3]) (*Track[math.Vec3], error) {
	return New(samples, LerpVec3)
}

// NewQuat builds a spherically interpolated rotation track.
func NewQuat(samples []Sample[math.Quat]) (*Track[math.Quat], error) {
	return New(samples, SlerpQuat)
}
