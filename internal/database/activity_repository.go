package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
)

// CallLogRepository handles database operations for call logs
type CallLogRepository struct {
	db DB
}

// NewCallLogRepository creates a new CallLogRepository
func NewCallLogRepository(db DB) *CallLogRepository {
	return &CallLogRepository{db: db}
}

// Create appends a call log
func (r *CallLogRepository) Create(cl *models.CallLog) error {
	query := `
		INSERT INTO call_logs (id, lead_id, client_id, case_id, direction, duration_seconds, outcome, notes, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		query,
		cl.ID, cl.LeadID, cl.ClientID, cl.CaseID, cl.Direction,
		cl.DurationSeconds, cl.Outcome, cl.Notes, cl.CreatedByID,
	).Scan(&cl.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create call log: %w", err)
	}
	return nil
}

// ListByLead retrieves call logs for a lead, newest first
func (r *CallLogRepository) ListByLead(leadID uuid.UUID) ([]models.CallLog, error) {
	return r.list("lead_id", leadID)
}

// ListByClient retrieves call logs for a client, newest first
func (r *CallLogRepository) ListByClient(clientID uuid.UUID) ([]models.CallLog, error) {
	return r.list("client_id", clientID)
}

// ListByCase retrieves call logs for a case, newest first
func (r *CallLogRepository) ListByCase(caseID uuid.UUID) ([]models.CallLog, error) {
	return r.list("case_id", caseID)
}

func (r *CallLogRepository) list(column string, id uuid.UUID) ([]models.CallLog, error) {
	query := fmt.Sprintf(`
		SELECT id, lead_id, client_id, case_id, direction, duration_seconds,
		       outcome, notes, created_by_id, created_at
		FROM call_logs
		WHERE %s = $1
		ORDER BY created_at DESC
	`, column)

	logs := []models.CallLog{}
	if err := r.db.Select(&logs, query, id); err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	return logs, nil
}

// NoteRepository handles database operations for notes
type NoteRepository struct {
	db DB
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create appends a note
func (r *NoteRepository) Create(n *models.Note) error {
	query := `
		INSERT INTO notes (id, lead_id, client_id, case_id, body, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(query, n.ID, n.LeadID, n.ClientID, n.CaseID, n.Body, n.CreatedByID).
		Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// ListByLead retrieves notes for a lead, newest first
func (r *NoteRepository) ListByLead(leadID uuid.UUID) ([]models.Note, error) {
	return r.list("lead_id", leadID)
}

// ListByClient retrieves notes for a client, newest first
func (r *NoteRepository) ListByClient(clientID uuid.UUID) ([]models.Note, error) {
	return r.list("client_id", clientID)
}

// ListByCase retrieves notes for a case, newest first
func (r *NoteRepository) ListByCase(caseID uuid.UUID) ([]models.Note, error) {
	return r.list("case_id", caseID)
}

func (r *NoteRepository) list(column string, id uuid.UUID) ([]models.Note, error) {
	query := fmt.Sprintf(`
		SELECT id, lead_id, client_id, case_id, body, created_by_id, created_at
		FROM notes
		WHERE %s = $1
		ORDER BY created_at DESC
	`, column)

	notes := []models.Note{}
	if err := r.db.Select(&notes, query, id); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
