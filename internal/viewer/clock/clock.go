// Package clock converts wall-clock time into scene time.
package clock

import "time"

// Clock accumulates scene time from wall-clock deltas scaled by a playback
// speed. It also tracks when the current animation cycle started so callers
// can loop.
type Clock struct {
	speed  float64
	loop   float64
	last   time.Time
	now    float64
	cycle  float64
	paused bool
}

// New creates a clock at scene time zero. A zero loop disables looping.
func New(start time.Time, speed float64, loop time.Duration) *Clock {
	if speed <= 0 {
		speed = 1
	}
	return &Clock{
		speed: speed,
		loop:  loop.Seconds(),
		last:  start,
	}
}

// Advance moves the clock to wall and returns the scene time. Wall time that
// goes backwards is ignored.
func (c *Clock) Advance(wall time.Time) float64 {
	dt := wall.Sub(c.last).Seconds()
	c.last = wall
	if dt > 0 && !c.paused {
		c.now += dt * c.speed
	}
	return c.now
}

// Now returns the current scene time.
func (c *Clock) Now() float64 {
	return c.now
}

// LoopDue reports whether a full loop period has elapsed since the cycle
// started.
func (c *Clock) LoopDue() bool {
	return c.loop > 0 && c.now-c.cycle >= c.loop
}

// Restart marks the current scene time as the start of a new cycle.
func (c *Clock) Restart() {
	c.cycle = c.now
}

// CycleTime returns the scene time elapsed in the current cycle.
func (c *Clock) CycleTime() float64 {
	return c.now - c.cycle
}

// TogglePause freezes or resumes scene time.
func (c *Clock) TogglePause() {
	c.paused = !c.paused
}

// Paused reports whether scene time is frozen.
func (c *Clock) Paused() bool {
	return c.paused
}

// Speed returns the playback speed.
func (c *Clock) Speed() float64 {
	return c.speed
}

// SetSpeed changes the playback speed. Non-positive values are ignored.
func (c *Clock) SetSpeed(speed float64) {
	if speed > 0 {
		c.speed = speed
	}
}
