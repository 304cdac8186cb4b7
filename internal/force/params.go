package force

import (
	"fmt"
	"time"
)

// Link strength slider bounds.
const (
	MinLinkStrength = 0.1
	MaxLinkStrength = 1.0
)

// Tick period bounds. The period is fixed for the lifetime of a Runner.
const (
	MinTickPeriod = 16 * time.Millisecond
	MaxTickPeriod = 100 * time.Millisecond
)

// Params configures the simulation.
type Params struct {
	Width  float64 // canvas width
	Height float64 // canvas height

	Repulsion  float64 // scale of the pairwise (w1+w2)/d push
	Attraction float64 // scale of the per-link pull
	Centering  float64 // scale of the pull toward the canvas center
	Damping    float64 // velocity multiplier applied every tick, in (0, 1)

	TickPeriod   time.Duration
	LinkStrength float64 // initial global link strength factor
}

// DefaultParams returns the tuned defaults for an 800x600 canvas.
func DefaultParams() Params {
	return Params{
		Width:        800,
		Height:       600,
		Repulsion:    0.1,
		Attraction:   0.05,
		Centering:    0.001,
		Damping:      0.9,
		TickPeriod:   50 * time.Millisecond,
		LinkStrength: 0.5,
	}
}

// Center returns the canvas center.
func (p Params) Center() Vec {
	return Vec{p.Width / 2, p.Height / 2}
}

// Validate checks that the parameters describe a usable simulation.
func (p Params) Validate() error {
	if !(p.Width > 0) || !(p.Height > 0) {
		return fmt.Errorf("canvas must have positive dimensions, got %gx%g", p.Width, p.Height)
	}
	if !(p.Damping > 0 && p.Damping < 1) {
		return fmt.Errorf("damping must be in (0, 1), got %g", p.Damping)
	}
	if p.Repulsion < 0 || p.Attraction < 0 || p.Centering < 0 {
		return fmt.Errorf("force scales must be non-negative")
	}
	if p.TickPeriod < MinTickPeriod || p.TickPeriod > MaxTickPeriod {
		return fmt.Errorf("tick period must be between %v and %v, got %v", MinTickPeriod, MaxTickPeriod, p.TickPeriod)
	}
	return nil
}

// ClampLinkStrength limits f to the slider range.
func ClampLinkStrength(f float64) float64 {
	if f != f || f < MinLinkStrength { // NaN or below range
		return MinLinkStrength
	}
	if f > MaxLinkStrength {
		return MaxLinkStrength
	}
	return f
}
