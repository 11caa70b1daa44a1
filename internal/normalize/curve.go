package normalize

import (
	"errors"
	"fmt"
	"math"
)

// Direction states whether larger raw values are better or worse.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

func (d Direction) String() string {
	switch d {
	case HigherIsBetter:
		return "higher_is_better"
	case LowerIsBetter:
		return "lower_is_better"
	default:
		return "unknown"
	}
}

// Point is one calibration point: raw value X scores Y.
type Point struct {
	X float64
	Y float64
}

// Curve is a piecewise-linear calibration. Points are sorted by X; values
// outside the first and last X take the score of the nearest end point.
type Curve []Point

// At interpolates the score for x and clamps it to [0,100].
func (c Curve) At(x float64) float64 {
	if len(c) == 0 || math.IsNaN(x) {
		return 0
	}
	if x <= c[0].X {
		return clamp(c[0].Y, 0, 100)
	}
	last := c[len(c)-1]
	if x >= last.X {
		return clamp(last.Y, 0, 100)
	}
	for i := 1; i < len(c); i++ {
		hi := c[i]
		if x > hi.X {
			continue
		}
		lo := c[i-1]
		t := (x - lo.X) / (hi.X - lo.X)
		return clamp(lo.Y+t*(hi.Y-lo.Y), 0, 100)
	}
	return clamp(last.Y, 0, 100)
}

// validate checks ordering, score range and monotonicity in direction d.
func (c Curve) validate(d Direction) error {
	if len(c) < 2 {
		return errors.New("curve needs at least two points")
	}
	for i, p := range c {
		if p.Y < 0 || p.Y > 100 {
			return fmt.Errorf("point %d score %.2f outside [0,100]", i, p.Y)
		}
		if i == 0 {
			continue
		}
		prev := c[i-1]
		if p.X <= prev.X {
			return fmt.Errorf("point %d is not strictly after point %d", i, i-1)
		}
		switch d {
		case HigherIsBetter:
			if p.Y < prev.Y {
				return fmt.Errorf("point %d decreases on a higher-is-better curve", i)
			}
		case LowerIsBetter:
			if p.Y > prev.Y {
				return fmt.Errorf("point %d increases on a lower-is-better curve", i)
			}
		default:
			return fmt.Errorf("unknown direction %d", d)
		}
	}
	return nil
}

// AmountBand scores absolute currency amounts strictly below Below.
type AmountBand struct {
	Below float64
	Score float64
}

func validateBands(bands []AmountBand) error {
	if len(bands) == 0 {
		return errors.New("at least one band is required")
	}
	for i, b := range bands {
		if b.Score < 0 || b.Score > 100 {
			return fmt.Errorf("band %d score %.2f outside [0,100]", i, b.Score)
		}
		if i > 0 && (b.Below <= bands[i-1].Below || b.Score < bands[i-1].Score) {
			return fmt.Errorf("band %d is not ascending", i)
		}
	}
	if !math.IsInf(bands[len(bands)-1].Below, 1) {
		return errors.New("last band must be open-ended")
	}
	return nil
}
