package matrix

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// NoRounding leaves a value as computed.
const NoRounding = -1

// Stats holds aggregate statistics over a flattened value set.
type Stats struct {
	Max float64 `json:"max"`
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Sum float64 `json:"sum"`
}

// RoundingMode selects how a value exactly halfway between two candidates is
// resolved.
type RoundingMode int

const (
	// HalfUp scales, adds one half and floors, so exact halves round toward
	// +Inf (0.125 -> 0.13, -0.125 -> -0.12).
	HalfUp RoundingMode = iota
	// Fixed formats v with exactly the given places and parses the text back.
	Fixed
)

// RoundingPolicy sets the decimal places avg and sum are rounded to.
type RoundingPolicy struct {
	AvgPlaces int          `json:"avgPlaces"`
	SumPlaces int          `json:"sumPlaces"`
	Mode      RoundingMode `json:"mode"`
}

var (
	// SinglePolicy rounds avg half-up to 2 places and leaves sum as computed.
	SinglePolicy = RoundingPolicy{AvgPlaces: 2, SumPlaces: NoRounding, Mode: HalfUp}
	// CombinedPolicy rounds avg and sum to 15 places.
	CombinedPolicy = RoundingPolicy{AvgPlaces: 15, SumPlaces: 15, Mode: Fixed}
)

func (p RoundingPolicy) round(v float64, places int) float64 {
	if p.Mode == Fixed {
		return Round(v, places)
	}
	return RoundHalfUp(v, places)
}

// Calculator computes Stats under a fixed rounding policy.
type Calculator struct {
	policy RoundingPolicy
}

// NewCalculator creates a calculator with the given policy.
func NewCalculator(policy RoundingPolicy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy returns the calculator's rounding policy.
func (c *Calculator) Policy() RoundingPolicy {
	return c.policy
}

// Compute returns statistics over a single validated matrix.
func (c *Calculator) Compute(m Matrix) (Stats, error) {
	return c.compute("matrix", Flatten(m))
}

// ComputeCombined returns statistics over the values of a followed by b.
func (c *Calculator) ComputeCombined(a, b Matrix) (Stats, error) {
	return c.compute("", Flatten(a, b))
}

// compute fails with ErrOverflow when finite cells sum beyond the float64
// range; field names the input in that error.
func (c *Calculator) compute(field string, values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrEmptyValues
	}

	// Explicit loop: floats.Sum may use unrolled accumulators, and the
	// accumulation order is part of the contract.
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return Stats{}, overflowError(field)
	}
	avg := sum / float64(len(values))

	return Stats{
		Max: floats.Max(values),
		Min: floats.Min(values),
		Avg: c.policy.round(avg, c.policy.AvgPlaces),
		Sum: c.policy.round(sum, c.policy.SumPlaces),
	}, nil
}

// Round rounds v to the given number of decimal places through its decimal
// text form. Negative places return v unchanged.
func Round(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// RoundHalfUp rounds v to the given number of decimal places with halves going
// toward +Inf. Negative places, or a v too large to scale, return v unchanged.
func RoundHalfUp(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	p := math.Pow(10, float64(places))
	r := math.Floor(v*p+0.5) / p
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return v
	}
	return r
}
