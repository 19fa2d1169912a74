package domain

import (
	"fmt"
	"math"
	"time"
)

// FullSweep is the sweep angle of a complete ring.
const FullSweep = 360.0

// Direction selects how the ring maps elapsed time to sweep angle.
type Direction int

const (
	// CountDown empties the ring: 360 at the start of a step, 0 at its end.
	CountDown Direction = iota
	// CountUp fills the ring: 0 at the start of a step, 360 at its end.
	CountUp
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "down":
		return CountDown, nil
	case "up":
		return CountUp, nil
	default:
		return CountDown, fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) String() string {
	if d == CountUp {
		return "up"
	}
	return "down"
}

func (d Direction) InitialProgress() float64 {
	if d == CountUp {
		return 0
	}
	return FullSweep
}

func (d Direction) TerminalProgress() float64 {
	if d == CountUp {
		return FullSweep
	}
	return 0
}

// Progress maps elapsed time within a step of the given duration to a sweep
// angle in [0,360].
func (d Direction) Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return d.TerminalProgress()
	}
	frac := clamp(elapsed.Seconds()/duration.Seconds(), 0, 1)
	if d == CountUp {
		return frac * FullSweep
	}
	return (1 - frac) * FullSweep
}

// Elapsed is the inverse of Progress.
func (d Direction) Elapsed(progress float64, duration time.Duration) time.Duration {
	frac := clamp(progress/FullSweep, 0, 1)
	if d == CountDown {
		frac = 1 - frac
	}
	return time.Duration(frac * float64(duration))
}

// RemainingLabel renders the whole seconds left in a step, e.g. "13s".
func RemainingLabel(elapsed, duration time.Duration) string {
	remaining := clamp((duration - elapsed).Seconds(), 0, duration.Seconds())
	return fmt.Sprintf("%ds", int(math.Round(remaining)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
