package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID                      string    `json:"id"`
	Label                   string    `json:"label"`
	Source                  string    `json:"source"`
	Column                  string    `json:"column"`
	Samples                 int       `json:"samples"`
	Mean                    float64   `json:"mean"`
	StdErr                  float64   `json:"std_err"`
	NaiveStdErr             float64   `json:"naive_std_err"`
	NEff                    float64   `json:"n_eff"`
	CorrelationTime         float64   `json:"correlation_time"`
	StatisticalInefficiency float64   `json:"statistical_inefficiency"`
	Truncated               bool      `json:"truncated"`
	ACF                     []float64 `json:"acf,omitempty"`
}

func exportData(meta *ReportMetadata, acf []float64) ExportData {
	return ExportData{
		ID:                      meta.ID,
		Label:                   meta.Label,
		Source:                  meta.Source,
		Column:                  meta.Column,
		Samples:                 meta.Samples,
		Mean:                    meta.Mean,
		StdErr:                  meta.StdErr,
		NaiveStdErr:             meta.NaiveStdErr,
		NEff:                    meta.NEff,
		CorrelationTime:         meta.CorrelationTime,
		StatisticalInefficiency: 2 * meta.CorrelationTime,
		Truncated:               meta.Truncated,
		ACF:                     acf,
	}
}

func writeJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, meta *ReportMetadata, acf []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeJSON(file, exportData(meta, acf))
}

func ExportJSONStdout(meta *ReportMetadata, acf []float64) error {
	return writeJSON(os.Stdout, exportData(meta, acf))
}
