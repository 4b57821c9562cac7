package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
)

// StatusChangeRepository handles database operations for lead/client status
// history
type StatusChangeRepository struct {
	db DB
}

// NewStatusChangeRepository creates a new StatusChangeRepository
func NewStatusChangeRepository(db DB) *StatusChangeRepository {
	return &StatusChangeRepository{db: db}
}

// Create appends a status change record
func (r *StatusChangeRepository) Create(sc *models.StatusChangeRecord) error {
	query := `
		INSERT INTO status_changes (id, lead_id, client_id, from_status, to_status, reason, changed_by_id, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		sc.ID, sc.LeadID, sc.ClientID, sc.FromStatus, sc.ToStatus,
		sc.Reason, sc.ChangedByID, sc.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create status change: %w", err)
	}
	return nil
}

// ListByLead retrieves the status history for a lead, oldest first
func (r *StatusChangeRepository) ListByLead(leadID uuid.UUID) ([]models.StatusChangeRecord, error) {
	return r.list("lead_id", leadID)
}

// ListByClient retrieves the status history for a client, oldest first
func (r *StatusChangeRepository) ListByClient(clientID uuid.UUID) ([]models.StatusChangeRecord, error) {
	return r.list("client_id", clientID)
}

func (r *StatusChangeRepository) list(column string, id uuid.UUID) ([]models.StatusChangeRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, lead_id, client_id, from_status, to_status, reason, changed_by_id, changed_at
		FROM status_changes
		WHERE %s = $1
		ORDER BY changed_at ASC
	`, column)

	changes := []models.StatusChangeRecord{}
	if err := r.db.Select(&changes, query, id); err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}
	return changes, nil
}

// StageChangeRepository handles database operations for case stage history
type StageChangeRepository struct {
	db DB
}

// NewStageChangeRepository creates a new StageChangeRepository
func NewStageChangeRepository(db DB) *StageChangeRepository {
	return &StageChangeRepository{db: db}
}

// Create appends a stage change record
func (r *StageChangeRepository) Create(sc *models.StageChangeRecord) error {
	query := `
		INSERT INTO stage_changes (id, case_id, from_stage, to_stage, notes, changed_by_id, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		sc.ID, sc.CaseID, sc.FromStage, sc.ToStage, sc.Notes,
		sc.ChangedByID, sc.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create stage change: %w", err)
	}
	return nil
}

// ListByCase retrieves the stage history for a case, oldest first
func (r *StageChangeRepository) ListByCase(caseID uuid.UUID) ([]models.StageChangeRecord, error) {
	query := `
		SELECT id, case_id, from_stage, to_stage, notes, changed_by_id, changed_at
		FROM stage_changes
		WHERE case_id = $1
		ORDER BY changed_at ASC
	`

	changes := []models.StageChangeRecord{}
	if err := r.db.Select(&changes, query, caseID); err != nil {
		return nil, fmt.Errorf("failed to list stage changes: %w", err)
	}
	return changes, nil
}
