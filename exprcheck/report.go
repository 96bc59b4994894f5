package exprcheck

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// TestResult and Report keep the Gradescope results layout so existing
// tooling can display them.
type TestResult struct {
	Name       string `json:"name"`
	MaxScore   int    `json:"max_score"`
	Score      int    `json:"score"`
	Output     string `json:"output"`
	Visibility string `json:"visibility"`
	Status     string `json:"status,omitempty"`
}

type Report struct {
	Tests  []TestResult `json:"tests"`
	Score  int          `json:"score"`
	Passed int          `json:"-"`
	Failed int          `json:"-"`
}

func NewReport() *Report {
	return &Report{Tests: []TestResult{}}
}

func (r *Report) AddTest(test TestResult, score int) {
	test.Score = score
	r.Score += score
	if test.Status == "passed" {
		r.Passed++
	} else {
		r.Failed++
	}
	r.Tests = append(r.Tests, test)
}

// Save writes the report as JSON to path.
func (r *Report) Save(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}

	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(err, "write report %s", path)
	}
	return nil
}

func CreateTestResult(name string, maxScore int, visibility string) TestResult {
	return TestResult{
		Name:       name,
		MaxScore:   maxScore,
		Visibility: visibility,
	}
}

func (t *TestResult) SetStatus(success bool) {
	if success {
		t.Status = "passed"
	} else {
		t.Status = "failed"
	}
}

func (t *TestResult) OutputPrintLn(str string) {
	t.Output += str + "\n"
}
