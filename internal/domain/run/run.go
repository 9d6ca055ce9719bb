// Package run tracks fine-tuning runs: their configuration,
// hyperparameters, and status transitions.
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

// Status is a run's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Hyperparameters configures one fine-tuning run.
type Hyperparameters struct {
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate" toml:"learning_rate"`
	Epochs       int     `yaml:"epochs" json:"epochs" toml:"epochs"`
	BatchSize    int     `yaml:"batch_size" json:"batch_size" toml:"batch_size"`
	WarmupRatio  float64 `yaml:"warmup_ratio" json:"warmup_ratio" toml:"warmup_ratio"`
	LoraRank     int     `yaml:"lora_rank" json:"lora_rank" toml:"lora_rank"`
	MaxSeqLen    int     `yaml:"max_seq_len" json:"max_seq_len" toml:"max_seq_len"`
}

// Validate checks the hyperparameters for obviously broken values.
func (h Hyperparameters) Validate() error {
	if h.LearningRate <= 0 {
		return errors.New("learning_rate must be positive")
	}
	if h.Epochs < 1 {
		return errors.New("epochs must be at least 1")
	}
	if h.BatchSize < 1 {
		return errors.New("batch_size must be at least 1")
	}
	if h.WarmupRatio < 0 || h.WarmupRatio >= 1 {
		return errors.New("warmup_ratio must be in [0, 1)")
	}
	if h.LoraRank < 0 {
		return errors.New("lora_rank must not be negative")
	}
	return nil
}

// Run is one fine-tuning job tracked by the daemon.
type Run struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	BaseModel   string          `yaml:"base_model" json:"base_model"`
	DatasetPath string          `yaml:"dataset_path" json:"dataset_path"`
	Params      Hyperparameters `yaml:"params" json:"params"`
	Status      Status          `yaml:"status" json:"status"`
	Error       string          `yaml:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time       `yaml:"created_at" json:"created_at"`
	StartedAt   *time.Time      `yaml:"started_at,omitempty" json:"started_at,omitempty"`
	FinishedAt  *time.Time      `yaml:"finished_at,omitempty" json:"finished_at,omitempty"`
}

// New creates a pending run with a fresh ID.
func New(name, baseModel, datasetPath string, params Hyperparameters) (*Run, error) {
	if name == "" {
		return nil, errors.New("run name is required")
	}
	if baseModel == "" {
		return nil, errors.New("base model is required")
	}
	if datasetPath == "" {
		return nil, errors.New("dataset path is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Run{
		ID:          uuid.NewString(),
		Name:        name,
		BaseModel:   baseModel,
		DatasetPath: datasetPath,
		Params:      params,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Start moves a pending run to running.
func (r *Run) Start() error {
	if r.Status != StatusPending {
		return fmt.Errorf("cannot start a %s run", r.Status)
	}
	now := time.Now().UTC()
	r.Status = StatusRunning
	r.StartedAt = &now
	return nil
}

// Complete moves a running run to completed.
func (r *Run) Complete() error {
	if r.Status != StatusRunning {
		return fmt.Errorf("cannot complete a %s run", r.Status)
	}
	now := time.Now().UTC()
	r.Status = StatusCompleted
	r.FinishedAt = &now
	return nil
}

// Fail moves a running run to failed, recording the reason.
func (r *Run) Fail(reason string) error {
	if r.Status != StatusRunning {
		return fmt.Errorf("cannot fail a %s run", r.Status)
	}
	now := time.Now().UTC()
	r.Status = StatusFailed
	r.Error = reason
	r.FinishedAt = &now
	return nil
}

// Cancel moves a pending or running run to canceled.
func (r *Run) Cancel() error {
	if r.Status != StatusPending && r.Status != StatusRunning {
		return fmt.Errorf("cannot cancel a %s run", r.Status)
	}
	now := time.Now().UTC()
	r.Status = StatusCanceled
	r.FinishedAt = &now
	return nil
}

// Invoker is the slice of the tool registry preflight needs.
type Invoker interface {
	Invoke(ctx context.Context, name string, inputs map[string]any) tool.Outcome
}

// PreflightReport is the result of running analysis tools against a
// run's dataset before it starts.
type PreflightReport struct {
	RunID    string         `json:"run_id"`
	Passed   bool           `json:"passed"`
	Outcomes []tool.Outcome `json:"outcomes"`
}

// Preflight invokes each named analysis tool against the run's dataset.
// The report fails if any tool reports a problem or fails to execute;
// a tool missing from the catalog fails the report too, so a typo in
// the configured tool list is caught rather than skipped.
func (r *Run) Preflight(ctx context.Context, inv Invoker, tools []string) PreflightReport {
	report := PreflightReport{RunID: r.ID, Passed: true}

	for _, name := range tools {
		outcome := inv.Invoke(ctx, name, map[string]any{"path": r.DatasetPath})
		report.Outcomes = append(report.Outcomes, outcome)
		if !outcome.OK() {
			report.Passed = false
			continue
		}
		if ok, present := outcome.Result["ok"].(bool); present && !ok {
			report.Passed = false
		}
	}
	return report
}
