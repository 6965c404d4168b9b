package trend

import "math"

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// epsilon below which a completion delta counts as flat.
const epsilon = 0.00001

// Trend describes the change in average completion between two runs.
// Delta is in percentage points; DeltaPercent is relative to the
// previous run's average.
type Trend struct {
	Delta        float64   `json:"delta"`
	DeltaPercent float64   `json:"deltaPercent"`
	Direction    Direction `json:"direction"`
	From         float64   `json:"from"`
	To           float64   `json:"to"`
}

func Compute(prev, curr float64) Trend {
	d := curr - prev

	dir := Flat
	if d > epsilon {
		dir = Up
	} else if d < -epsilon {
		dir = Down
	}

	dp := 0.0
	if math.Abs(prev) > epsilon {
		dp = (d / prev) * 100.0
	}

	return Trend{
		Delta:        round(d, 2),
		DeltaPercent: round(dp, 2),
		Direction:    dir,
		From:         round(prev, 2),
		To:           round(curr, 2),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
