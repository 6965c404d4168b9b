package output

import (
	"encoding/json"
	"html/template"
	"io"
	"time"

	"testcycle-reporter/internal/model"
)

// plotly trace shapes; marshalled straight into the page script.
type htmlTrace struct {
	X     []string `json:"x"`
	Y     []any    `json:"y"`
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Mode  string   `json:"mode,omitempty"`
	YAxis string   `json:"yaxis,omitempty"`
}

type htmlLayout struct {
	Title   string   `json:"title"`
	XAxis   htmlAxis `json:"xaxis"`
	YAxis   htmlAxis `json:"yaxis"`
	YAxis2  htmlAxis `json:"yaxis2"`
	BarMode string   `json:"barmode"`
}

type htmlAxis struct {
	Title      string    `json:"title,omitempty"`
	Range      []float64 `json:"range,omitempty"`
	Overlaying string    `json:"overlaying,omitempty"`
	Side       string    `json:"side,omitempty"`
}

var chartTpl = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { color: #2E86C1; }
.container { max-width: 1200px; margin: 0 auto; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<p>Generated on: {{.Generated}}</p>
<div id="chart" style="height:600px;"></div>
<script>
Plotly.newPlot("chart", {{.Traces}}, {{.Layout}});
</script>
</div>
</body>
</html>
`))

// WriteChartHTML renders the chart spec as a standalone interactive page.
func WriteChartHTML(spec model.ChartSpec, path string) error {
	return atomicWrite(path, func(out io.Writer) error {
		traces := buildTraces(spec)
		layout := htmlLayout{
			Title:   spec.Title,
			XAxis:   htmlAxis{Title: spec.XAxisTitle},
			YAxis:   htmlAxis{Title: spec.YAxisTitle, Range: []float64{spec.YRange[0], spec.YRange[1]}},
			YAxis2:  htmlAxis{Title: "Case Count", Overlaying: "y", Side: "right"},
			BarMode: "group",
		}

		rawTraces, err := json.Marshal(traces)
		if err != nil {
			return err
		}
		rawLayout, err := json.Marshal(layout)
		if err != nil {
			return err
		}

		return chartTpl.Execute(out, struct {
			Title     string
			Generated string
			Traces    template.JS
			Layout    template.JS
		}{
			Title:     spec.Title,
			Generated: time.Now().Format("2006-01-02 15:04:05"),
			Traces:    template.JS(rawTraces),
			Layout:    template.JS(rawLayout),
		})
	})
}

func buildTraces(spec model.ChartSpec) []htmlTrace {
	traces := make([]htmlTrace, 0, len(spec.Series)+2)
	for _, s := range spec.Series {
		tr := htmlTrace{Name: s.Name, Type: "scatter", Mode: "lines+markers"}
		for _, p := range s.Points {
			tr.X = append(tr.X, p.Date.Format("2006-01-02"))
			tr.Y = append(tr.Y, p.Value)
		}
		traces = append(traces, tr)
	}

	if len(spec.Bars) > 0 {
		total := htmlTrace{Name: "Total Cases", Type: "bar", YAxis: "y2"}
		completed := htmlTrace{Name: "Completed Cases", Type: "bar", YAxis: "y2"}
		for _, b := range spec.Bars {
			total.X = append(total.X, b.Date)
			total.Y = append(total.Y, b.Total)
			completed.X = append(completed.X, b.Date)
			completed.Y = append(completed.Y, b.Completed)
		}
		traces = append(traces, total, completed)
	}
	return traces
}
