package tween

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// Easing maps linear progress in [0,1] to eased progress. Implementations
// must return 0 at 0 and 1 at 1.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseInOutCubic accelerates then decelerates.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// springSamples is the resolution of a precomputed spring curve.
const springSamples = 240

// Spring returns an easing that follows a damped harmonic spring from 0 to
// 1. An under-damped spring overshoots before settling. The curve is forced
// to land exactly on 1 at the end of the tween.
func Spring(frequency, damping float64) Easing {
	s := harmonica.NewSpring(harmonica.FPS(springSamples), frequency, damping)
	curve := make([]float64, springSamples+1)
	var pos, vel float64
	for i := 1; i <= springSamples; i++ {
		pos, vel = s.Update(pos, vel, 1)
		curve[i] = pos
	}
	// Blend the tail toward 1 so slow springs still finish on target.
	last := curve[springSamples]
	for i := range curve {
		f := float64(i) / springSamples
		curve[i] += (1 - last) * f * f
	}
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		x := t * springSamples
		i := int(x)
		frac := x - float64(i)
		return curve[i] + (curve[i+1]-curve[i])*frac
	}
}

// ParseEasing resolves an easing by name: "linear", "cubic" or "spring".
func ParseEasing(name string) (Easing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return Linear, nil
	case "cubic", "ease-in-out":
		return EaseInOutCubic, nil
	case "spring":
		return Spring(6, 0.5), nil
	}
	return nil, fmt.Errorf("tween: unknown easing %q", name)
}
