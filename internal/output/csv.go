package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"testcycle-reporter/internal/model"
)

var csvHeader = []string{"Cycle", "Date", "Status", "Total", "Completed", "Percentage", "Breakdown"}

// WriteCSV writes the dataset with a header row and a stable column
// order. Files are UTF-8 with BOM for clean Excel opening on Windows.
func WriteCSV(ds model.Dataset, path string) error {
	return atomicWrite(path, func(out io.Writer) error {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return err
		}
		w := csv.NewWriter(out)
		if err := w.Write(csvHeader); err != nil {
			return err
		}
		for _, r := range ds.Rows {
			rec := []string{
				r.Cycle,
				r.Date.Format("2006-01-02"),
				r.Status,
				fmt.Sprintf("%d", r.Total),
				fmt.Sprintf("%d", r.Completed),
				fmt.Sprintf("%.2f", r.Percentage),
				r.Breakdown,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}
