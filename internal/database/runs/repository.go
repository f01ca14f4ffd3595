package runs

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/pocket-migrate/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BeginRun inserts a run row and fills in its ID.
func (r *Repository) BeginRun(run *entities.ImportRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if err := r.db.Omit("Failures").Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun stores the final counts of a run together with its failures.
func (r *Repository) CompleteRun(run *entities.ImportRun) error {
	if run.ID == 0 {
		return fmt.Errorf("run has not been started")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Failures").Save(run).Error; err != nil {
			return fmt.Errorf("failed to update run %d: %w", run.ID, err)
		}
		if len(run.Failures) == 0 {
			return nil
		}
		for i := range run.Failures {
			run.Failures[i].RunID = run.ID
		}
		if err := tx.Create(&run.Failures).Error; err != nil {
			return fmt.Errorf("failed to record failures for run %d: %w", run.ID, err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs first.
func (r *Repository) ListRuns(limit int) ([]entities.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entities.ImportRun
	err := r.db.Order("started_at DESC").Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// GetRun returns one run with its failures.
func (r *Repository) GetRun(id uint) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.Preload("Failures", func(db *gorm.DB) *gorm.DB {
		return db.Order("link_index ASC")
	}).First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
