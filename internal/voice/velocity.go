package voice

import "math"

// VelocityGain maps a MIDI velocity (0-127) to a linear gain using the
// published perceptual x^2.5 approximation (Open Question resolved in
// DESIGN.md: no velocity curve shape is named in spec.md §4.2/§9, and this
// is the standard curve used across the sampler-engine examples for
// perceptually-even velocity steps).
func VelocityGain(velocity int) float64 {
	if velocity <= 0 {
		return 0
	}
	if velocity > 127 {
		velocity = 127
	}
	return math.Pow(float64(velocity)/127.0, 2.5)
}
