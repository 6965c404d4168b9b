package model

import "time"

// Row is one CSV line of the report dataset.
type Row struct {
	Cycle      string
	Date       time.Time
	Status     string
	Total      int
	Completed  int
	Percentage float64
	Breakdown  string
}

// Dataset is the ordered tabular form of a run's stats.
type Dataset struct {
	Rows []Row
}

// Empty reports whether the dataset has nothing to write. An empty dataset
// is the sentinel for "no cycles found", not an error.
func (d Dataset) Empty() bool { return len(d.Rows) == 0 }

// Point is a single observation on a chart series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is one completion-percentage trend line, one per distinct cycle
// name, points sorted by date ascending.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// BarPoint carries total vs completed counts aggregated by calendar date
// for the secondary bar layer.
type BarPoint struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// ChartSpec is the declarative chart structure handed to the sink writer.
// The rendering library is an external concern.
type ChartSpec struct {
	Title      string     `json:"title"`
	XAxisTitle string     `json:"xAxisTitle"`
	YAxisTitle string     `json:"yAxisTitle"`
	YRange     [2]float64 `json:"yRange"`
	Series     []Series   `json:"series"`
	Bars       []BarPoint `json:"bars"`
}

// Empty reports whether the chart has no series to render.
func (c ChartSpec) Empty() bool { return len(c.Series) == 0 }
