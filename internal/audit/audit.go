package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/pocket-migrate/internal/importers"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Snapshot is the on-disk form of a finished import run.
type Snapshot struct {
	SourceFile         string    `json:"source_file" yaml:"source_file"`
	Stage              string    `json:"stage" yaml:"stage"`
	Cancelled          bool      `json:"cancelled" yaml:"cancelled"`
	Aborted            string    `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	Loaded             int       `json:"loaded" yaml:"loaded"`
	TimestampFallbacks int       `json:"timestamp_fallbacks" yaml:"timestamp_fallbacks"`
	Batches            int       `json:"batches" yaml:"batches"`
	Attempted          int       `json:"attempted" yaml:"attempted"`
	Succeeded          int       `json:"succeeded" yaml:"succeeded"`
	Failed             int       `json:"failed" yaml:"failed"`
	SuccessRate        float64   `json:"success_rate" yaml:"success_rate"`
	Errors             []string  `json:"errors" yaml:"errors"`
	BatchFailures      []string  `json:"batch_failures" yaml:"batch_failures"`
	FinishedAt         time.Time `json:"finished_at" yaml:"finished_at"`
}

// NewSnapshot captures a run result. runErr is the error Run returned, if any.
func NewSnapshot(result importers.Result, runErr error) Snapshot {
	s := Snapshot{
		SourceFile:         result.SourceFile,
		Stage:              string(result.Stage),
		Cancelled:          result.Cancelled,
		Loaded:             result.Loaded,
		TimestampFallbacks: result.TimestampFallbacks,
		Batches:            result.Batches,
		Attempted:          result.Attempted,
		Succeeded:          result.Succeeded,
		Failed:             result.Failed,
		SuccessRate:        result.SuccessRate(),
		Errors:             append([]string{}, result.Errors...),
		BatchFailures:      append([]string{}, result.BatchFailures...),
		FinishedAt:         time.Now().UTC(),
	}
	if runErr != nil {
		s.Aborted = runErr.Error()
	}
	return s
}

type Auditor struct {
	AuditDir string
	Format   string
}

func NewAuditor(auditDir, format string) *Auditor {
	if format == "" {
		format = FormatJSON
	}
	return &Auditor{
		AuditDir: auditDir,
		Format:   format,
	}
}

// Save writes data in the auditor's format and returns the file name.
func (a *Auditor) Save(data any) (string, error) {
	switch a.Format {
	case FormatJSON:
		return a.SaveJSON(data)
	case FormatYAML:
		return a.SaveYAML(data)
	default:
		return "", fmt.Errorf("unsupported snapshot format %q", a.Format)
	}
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	return a.write("json", content)
}

// SaveYAML saves the provided data as YAML to a file with UUID4 filename
func (a *Auditor) SaveYAML(data any) (string, error) {
	content, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to YAML: %w", err)
	}
	return a.write("yaml", content)
}

func (a *Auditor) write(ext string, content []byte) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(a.AuditDir, filename), content, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return filename, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
