package engine

// quadInOut accelerates through the first half of t in [0,1] and decelerates
// through the second. Values outside [0,1] are clamped.
func quadInOut(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 2 * t * t
	default:
		u := -2*t + 2
		return 1 - u*u/2
	}
}
