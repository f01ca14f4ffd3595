package entities

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusAborted   RunStatus = "aborted"
	RunStatusCancelled RunStatus = "cancelled"
)

// ImportRun records the outcome of one import invocation.
type ImportRun struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	SourceFile         string          `gorm:"size:1024" json:"source_file"`
	Status             RunStatus       `gorm:"index;size:20" json:"status"`
	Stage              string          `gorm:"size:30" json:"stage"`
	AbortReason        string          `gorm:"size:500" json:"abort_reason,omitempty"`
	Loaded             int             `json:"loaded"`
	Attempted          int             `json:"attempted"`
	Succeeded          int             `json:"succeeded"`
	Failed             int             `json:"failed"`
	TimestampFallbacks int             `json:"timestamp_fallbacks"`
	Failures           []ImportFailure `gorm:"foreignKey:RunID" json:"failures,omitempty"`
	StartedAt          time.Time       `gorm:"index" json:"started_at"`
	FinishedAt         *time.Time      `json:"finished_at,omitempty"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

// ImportFailure is a record that could not be delivered, kept for manual reconciliation.
type ImportFailure struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RunID     uint      `gorm:"index" json:"run_id"`
	Index     int       `gorm:"column:link_index" json:"index"`
	LinkID    string    `gorm:"size:36" json:"link_id"`
	RawURL    string    `gorm:"size:2048" json:"raw_url"`
	Message   string    `gorm:"size:1000" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (ImportFailure) TableName() string {
	return "import_failures"
}
