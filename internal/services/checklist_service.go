package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
	"github.com/gulfbridge/mortgage-crm-backend/internal/storage"
)

// UploadedFile is one file received in an upload batch
type UploadedFile struct {
	Kind        string
	FileName    string
	ContentType string
	Data        []byte
}

// ChecklistService manages the bank-form checklist on cases and the
// document checklist on clients. Bytes go to object storage; only
// metadata lands in Postgres.
type ChecklistService struct {
	bankForms *database.BankFormRepository
	documents *database.DocumentRepository
	store     storage.ObjectStore
	logger    *logrus.Logger
}

// NewChecklistService creates a new checklist service
func NewChecklistService(
	bankForms *database.BankFormRepository,
	documents *database.DocumentRepository,
	store storage.ObjectStore,
	logger *logrus.Logger,
) *ChecklistService {
	return &ChecklistService{
		bankForms: bankForms,
		documents: documents,
		store:     store,
		logger:    logger,
	}
}

// UploadBankForms stores a batch of bank forms against a case. Each file
// carries a declared kind; within the batch the first file of each required
// kind claims it, and any later file of the same kind is stored under the
// catch-all kind instead of overwriting.
func (s *ChecklistService) UploadBankForms(ctx context.Context, caseID uuid.UUID, files []UploadedFile, actorID uuid.UUID) ([]models.BankForm, error) {
	if len(files) == 0 {
		return nil, errors.New("no files in upload batch")
	}

	detected := make([]pipeline.BankFormKind, len(files))
	for i, f := range files {
		kind, err := pipeline.ParseBankFormKind(f.Kind)
		if err != nil {
			return nil, err
		}
		detected[i] = kind
	}
	kinds := pipeline.ClassifyBankFormBatch(detected)

	updated := make([]models.BankForm, 0, len(files))
	now := time.Now()
	for i, f := range files {
		key := storage.ObjectKey("cases", caseID, f.FileName)
		if err := s.store.Upload(ctx, key, f.Data, f.ContentType); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", f.FileName, err)
		}

		form, err := s.bankForms.MarkUploaded(caseID, kinds[i], key, f.FileName, now)
		if err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", f.FileName, err)
		}
		updated = append(updated, *form)
	}

	s.logger.WithFields(logrus.Fields{
		"case_id":  caseID,
		"files":    len(files),
		"actor_id": actorID,
	}).Info("Bank forms uploaded")

	return updated, nil
}

// DeleteBankForm removes an uploaded bank form. Required kinds reset to
// missing; catch-all entries are removed entirely.
func (s *ChecklistService) DeleteBankForm(ctx context.Context, formID uuid.UUID) error {
	form, err := s.bankForms.GetByID(formID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get bank form: %w", err)
	}

	if form.FileKey.Valid {
		if err := s.store.Delete(ctx, form.FileKey.String); err != nil {
			// The checklist reset still proceeds; an orphaned object is
			// recoverable, a stuck checklist row is not.
			s.logger.WithField("key", form.FileKey.String).WithError(err).Warn("Failed to delete stored object")
		}
	}

	return s.bankForms.ResetToMissing(formID, form.Kind)
}

// PresignBankForm returns a short-lived download URL for an uploaded form
func (s *ChecklistService) PresignBankForm(ctx context.Context, formID uuid.UUID) (string, error) {
	form, err := s.bankForms.GetByID(formID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get bank form: %w", err)
	}
	if !form.FileKey.Valid {
		return "", errors.New("bank form has no uploaded file")
	}
	return s.store.PresignDownload(ctx, form.FileKey.String, 15*time.Minute)
}

// UploadDocument stores a single client document under its declared kind
func (s *ChecklistService) UploadDocument(ctx context.Context, clientID uuid.UUID, file UploadedFile, actorID uuid.UUID) (*models.Document, error) {
	kind, err := pipeline.ParseDocumentKind(file.Kind)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey("clients", clientID, file.FileName)
	if err := s.store.Upload(ctx, key, file.Data, file.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", file.FileName, err)
	}

	doc, err := s.documents.MarkUploaded(clientID, kind, key, file.FileName, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to record %s: %w", file.FileName, err)
	}

	s.logger.WithFields(logrus.Fields{
		"client_id": clientID,
		"kind":      kind,
		"actor_id":  actorID,
	}).Info("Document uploaded")

	return doc, nil
}

// SetDocumentStatus marks a document verified or notApplicable. Only the
// manual statuses are accepted here; missing and uploaded are managed by
// the upload/delete flow.
func (s *ChecklistService) SetDocumentStatus(docID uuid.UUID, status string) (*models.Document, error) {
	formStatus := pipeline.FormStatus(status)
	if formStatus != pipeline.FormStatusVerified && formStatus != pipeline.FormStatusNotApplicable {
		return nil, errors.New("status must be verified or notApplicable")
	}

	if err := s.documents.SetStatus(docID, formStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to set document status: %w", err)
	}
	return s.documents.GetByID(docID)
}

// DeleteDocument removes an uploaded document, resetting required kinds
// to missing
func (s *ChecklistService) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.documents.GetByID(docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if doc.FileKey.Valid {
		if err := s.store.Delete(ctx, doc.FileKey.String); err != nil {
			s.logger.WithField("key", doc.FileKey.String).WithError(err).Warn("Failed to delete stored object")
		}
	}

	return s.documents.ResetToMissing(docID, doc.Kind)
}

// PresignDocument returns a short-lived download URL for an uploaded document
func (s *ChecklistService) PresignDocument(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.documents.GetByID(docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get document: %w", err)
	}
	if !doc.FileKey.Valid {
		return "", errors.New("document has no uploaded file")
	}
	return s.store.PresignDownload(ctx, doc.FileKey.String, 15*time.Minute)
}
