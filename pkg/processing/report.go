package processing

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/systemstart/many-scaffold/pkg/failure"
)

// Status is the result of one step in a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one step.
type Outcome struct {
	Index     int           `yaml:"index"`
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind"`
	Action    string        `yaml:"action"`
	Status    Status        `yaml:"status"`
	ErrorKind failure.Kind  `yaml:"errorKind,omitempty"`
	Message   string        `yaml:"message,omitempty"`
	ExitCode  int           `yaml:"exitCode,omitempty"`
	Output    string        `yaml:"output,omitempty"`
	Duration  time.Duration `yaml:"duration"`
	Diff      string        `yaml:"diff,omitempty"`

	Err error `yaml:"-"`
}

// Report is the result of one run, with outcomes in step order.
type Report struct {
	RunID           string        `yaml:"runId"`
	Recipe          string        `yaml:"recipe"`
	Target          string        `yaml:"target"`
	DryRun          bool          `yaml:"dryRun"`
	ContinueOnError bool          `yaml:"continueOnError"`
	StartedAt       time.Time     `yaml:"startedAt"`
	Duration        time.Duration `yaml:"duration"`
	Outcomes        []Outcome     `yaml:"outcomes"`
}

// Failed returns the failed outcomes.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Succeeded reports whether no step failed.
func (r *Report) Succeeded() bool {
	return len(r.Failed()) == 0
}

func (r *Report) Counts() map[Status]int {
	counts := map[Status]int{StatusSuccess: 0, StatusSkipped: 0, StatusFailed: 0}
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// WriteReport writes r as YAML to filename.
func WriteReport(filename string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
