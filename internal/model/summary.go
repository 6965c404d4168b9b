package model

// RunSummary is the per-run record appended to the history index.
type RunSummary struct {
	RunID             string  `json:"runId"`
	TimestampUtc      string  `json:"timestampUtc"`
	ProjectKey        string  `json:"projectKey"`
	Cycles            int     `json:"cycles"`
	AverageCompletion float64 `json:"averageCompletion"`
	CSVFile           string  `json:"csvFile,omitempty"`
	HTMLFile          string  `json:"htmlFile,omitempty"`
	JSONFile          string  `json:"jsonFile,omitempty"`
}
