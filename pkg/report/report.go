// Package report persists the outcome of a script run as JSON and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/types"
)

const (
	JSONFile = "report.json"
	CSVFile  = "report.csv"
)

// Report summarises one run.
type Report struct {
	RunID      string             `json:"run_id"`
	Script     string             `json:"script"`
	Driver     string             `json:"driver"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	OK         bool               `json:"ok"`
	Total      int                `json:"total"`
	Success    int                `json:"success"`
	Failure    int                `json:"failure"`
	Error      string             `json:"error,omitempty"`
	Steps      []types.StepResult `json:"steps"`
}

// New builds a report from step results. Steps that never ran count towards
// Total but neither Success nor Failure.
func New(runID, script, driver string, total int, results []types.StepResult, runErr error) *Report {
	r := &Report{
		RunID:  runID,
		Script: script,
		Driver: driver,
		Total:  total,
		Steps:  results,
	}
	if r.Steps == nil {
		r.Steps = []types.StepResult{}
	}
	for _, res := range results {
		if res.OK {
			r.Success++
		} else {
			r.Failure++
		}
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	r.OK = runErr == nil && r.Failure == 0 && r.Success == total
	return r
}

// Write stores report.json and report.csv in dir and returns their paths.
func Write(r *Report, dir string) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("creating report directory: %w", err)
	}

	jsonPath := filepath.Join(dir, JSONFile)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", jsonPath, err)
	}

	csvPath := filepath.Join(dir, CSVFile)
	if err := writeCSV(csvPath, r.Steps); err != nil {
		return "", "", err
	}
	return jsonPath, csvPath, nil
}

func writeCSV(path string, steps []types.StepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{{"index", "name", "ok", "attempts", "duration_ms", "detail", "extracted", "error", "artifact_path"}}
	for _, s := range steps {
		extracted := ""
		if s.Extracted != nil {
			extracted = *s.Extracted
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			s.Name,
			strconv.FormatBool(s.OK),
			strconv.Itoa(s.Attempts),
			strconv.FormatInt(s.DurationMs, 10),
			s.Detail,
			extracted,
			s.Error,
			s.ArtifactPath,
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
