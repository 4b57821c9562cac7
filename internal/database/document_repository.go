package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// DocumentRepository handles database operations for client document
// checklist entries
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `
	id, client_id, kind, status, file_key, file_name, uploaded_at, created_at, updated_at
`

// InitChecklist creates one missing placeholder row per required kind for a
// newly created client.
func (r *DocumentRepository) InitChecklist(clientID uuid.UUID) error {
	query := `
		INSERT INTO documents (id, client_id, kind, status)
		VALUES ($1, $2, $3, $4)
	`

	for _, kind := range pipeline.RequiredDocumentKinds() {
		if _, err := r.db.Exec(query, uuid.New(), clientID, kind, pipeline.FormStatusMissing); err != nil {
			return fmt.Errorf("failed to init document checklist: %w", err)
		}
	}
	return nil
}

// GetByClient retrieves all document entries for a client
func (r *DocumentRepository) GetByClient(clientID uuid.UUID) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE client_id = $1 ORDER BY created_at ASC, id ASC`

	docs := []models.Document{}
	if err := r.db.Select(&docs, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// GetByID retrieves one document entry
func (r *DocumentRepository) GetByID(docID uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc := &models.Document{}
	if err := r.db.Get(doc, query, docID); err != nil {
		return nil, err
	}
	return doc, nil
}

// MarkUploaded flips a checklist entry to uploaded with its file reference
func (r *DocumentRepository) MarkUploaded(clientID uuid.UUID, kind pipeline.DocumentKind, fileKey, fileName string, at time.Time) (*models.Document, error) {
	if kind == pipeline.DocumentOther {
		doc := &models.Document{}
		query := `
			INSERT INTO documents (id, client_id, kind, status, file_key, file_name, uploaded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + documentColumns

		if err := r.db.Get(doc, query, uuid.New(), clientID, kind, pipeline.FormStatusUploaded, fileKey, fileName, at); err != nil {
			return nil, fmt.Errorf("failed to insert document: %w", err)
		}
		return doc, nil
	}

	doc := &models.Document{}
	query := `
		UPDATE documents
		SET status = $3, file_key = $4, file_name = $5, uploaded_at = $6, updated_at = NOW()
		WHERE client_id = $1 AND kind = $2
		RETURNING ` + documentColumns

	if err := r.db.Get(doc, query, clientID, kind, pipeline.FormStatusUploaded, fileKey, fileName, at); err != nil {
		return nil, fmt.Errorf("failed to mark document uploaded: %w", err)
	}
	return doc, nil
}

// SetStatus sets an entry's status directly (manual verified/notApplicable)
func (r *DocumentRepository) SetStatus(docID uuid.UUID, status pipeline.FormStatus) error {
	query := `UPDATE documents SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.Exec(query, docID, status); err != nil {
		return fmt.Errorf("failed to set document status: %w", err)
	}
	return nil
}

// ResetToMissing clears an uploaded entry back to missing
func (r *DocumentRepository) ResetToMissing(docID uuid.UUID, kind pipeline.DocumentKind) error {
	if kind == pipeline.DocumentOther {
		if _, err := r.db.Exec(`DELETE FROM documents WHERE id = $1`, docID); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	}

	query := `
		UPDATE documents
		SET status = $2, file_key = NULL, file_name = NULL, uploaded_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.Exec(query, docID, pipeline.FormStatusMissing); err != nil {
		return fmt.Errorf("failed to reset document: %w", err)
	}
	return nil
}
