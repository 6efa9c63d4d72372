package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/numkit/stats"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type ReportMetadata struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	Source          string    `json:"source"`
	Column          string    `json:"column"`
	Timestamp       time.Time `json:"timestamp"`
	Samples         int       `json:"samples"`
	Mean            float64   `json:"mean"`
	StdErr          float64   `json:"std_err"`
	NaiveStdErr     float64   `json:"naive_std_err"`
	NEff            float64   `json:"n_eff"`
	CorrelationTime float64   `json:"correlation_time"`
	Truncated       bool      `json:"truncated"`
}

// Save stores an estimate under a fresh report ID of the form
// <label>_<unix>. The autocorrelation function, when given, lands in
// acf.csv next to the metadata.
func (s *Store) Save(label, source, column string, est *stats.Estimate, acf *stats.ACF) (string, error) {
	reportID := fmt.Sprintf("%s_%d", label, time.Now().Unix())
	reportDir := filepath.Join(s.baseDir, reportID)

	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", err
	}

	meta := ReportMetadata{
		ID:              reportID,
		Label:           label,
		Source:          source,
		Column:          column,
		Timestamp:       time.Now(),
		Samples:         est.N,
		Mean:            est.Mean,
		StdErr:          est.StdErr,
		NaiveStdErr:     est.NaiveStdErr,
		NEff:            est.NEff,
		CorrelationTime: est.CorrelationTime,
		Truncated:       est.Truncated,
	}

	metaFile, err := os.Create(filepath.Join(reportDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if acf == nil {
		return reportID, nil
	}

	csvFile, err := os.Create(filepath.Join(reportDir, "acf.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"lag", "acf"}); err != nil {
		return "", err
	}
	for lag, value := range acf.Values {
		row := []string{strconv.Itoa(lag), strconv.FormatFloat(value, 'f', 6, 64)}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return reportID, nil
}

func (s *Store) List() ([]ReportMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ReportMetadata{}, nil
		}
		return nil, err
	}

	reports := make([]ReportMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta ReportMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		reports = append(reports, meta)
	}

	return reports, nil
}

func (s *Store) Load(reportID string) (*ReportMetadata, error) {
	metaPath := filepath.Join(s.baseDir, reportID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta ReportMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadACF reads back the stored autocorrelation coefficients, indexed
// by lag.
func (s *Store) LoadACF(reportID string) ([]float64, error) {
	csvPath := filepath.Join(s.baseDir, reportID, "acf.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(records))
	for i := 1; i < len(records); i++ {
		if len(records[i]) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(records[i][1], 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}

	return values, nil
}
