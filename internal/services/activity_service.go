package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
)

// EntityKind identifies which record an activity belongs to
type EntityKind string

const (
	EntityLead   EntityKind = "lead"
	EntityClient EntityKind = "client"
	EntityCase   EntityKind = "case"
)

// ActivityService appends call logs and notes to leads, clients and cases.
// The first touch on a lead also stamps its first-response time.
type ActivityService struct {
	callLogs *database.CallLogRepository
	notes    *database.NoteRepository
	leads    *database.LeadRepository
	logger   *logrus.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(
	callLogs *database.CallLogRepository,
	notes *database.NoteRepository,
	leads *database.LeadRepository,
	logger *logrus.Logger,
) *ActivityService {
	return &ActivityService{
		callLogs: callLogs,
		notes:    notes,
		leads:    leads,
		logger:   logger,
	}
}

// LogCall records a call against the target entity
func (s *ActivityService) LogCall(kind EntityKind, targetID uuid.UUID, req *models.CreateCallLogRequest, actorID uuid.UUID) (*models.CallLog, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cl := &models.CallLog{
		ID:              uuid.New(),
		Direction:       models.CallDirection(req.Direction),
		DurationSeconds: req.DurationSeconds,
		CreatedByID:     actorID,
	}
	if req.Outcome != nil {
		cl.Outcome = models.NullString{NullString: sql.NullString{String: *req.Outcome, Valid: true}}
	}
	if req.Notes != nil {
		cl.Notes = models.NullString{NullString: sql.NullString{String: *req.Notes, Valid: true}}
	}
	if err := s.attach(cl, kind, targetID); err != nil {
		return nil, err
	}

	if err := s.callLogs.Create(cl); err != nil {
		return nil, fmt.Errorf("failed to create call log: %w", err)
	}

	s.touchLead(kind, targetID)
	return cl, nil
}

// AddNote appends a note to the target entity
func (s *ActivityService) AddNote(kind EntityKind, targetID uuid.UUID, req *models.CreateNoteRequest, actorID uuid.UUID) (*models.Note, error) {
	note := &models.Note{
		ID:          uuid.New(),
		Body:        req.Body,
		CreatedByID: actorID,
	}
	switch kind {
	case EntityLead:
		note.LeadID = &targetID
	case EntityClient:
		note.ClientID = &targetID
	case EntityCase:
		note.CaseID = &targetID
	default:
		return nil, errors.New("unknown entity kind")
	}

	if err := s.notes.Create(note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.touchLead(kind, targetID)
	return note, nil
}

func (s *ActivityService) attach(cl *models.CallLog, kind EntityKind, targetID uuid.UUID) error {
	switch kind {
	case EntityLead:
		cl.LeadID = &targetID
	case EntityClient:
		cl.ClientID = &targetID
	case EntityCase:
		cl.CaseID = &targetID
	default:
		return errors.New("unknown entity kind")
	}
	return nil
}

// touchLead stamps first_response_at on the lead if this is its first touch
func (s *ActivityService) touchLead(kind EntityKind, targetID uuid.UUID) {
	if kind != EntityLead {
		return
	}
	if err := s.leads.TouchFirstResponse(targetID, time.Now()); err != nil {
		s.logger.WithField("lead_id", targetID).WithError(err).Warn("Failed to stamp first response")
	}
}
