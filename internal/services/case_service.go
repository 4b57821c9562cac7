package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/cache"
	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// CasePage is one cached page of a case listing
type CasePage struct {
	Items []models.Case `json:"items"`
	Total int           `json:"total"`
}

// CaseService drives cases through the stage pipeline. Every accepted
// transition lands a stage-change record; rejected transitions surface
// the pipeline's typed errors unchanged so handlers can map them.
type CaseService struct {
	cases        *database.CaseRepository
	bankForms    *database.BankFormRepository
	stageChanges *database.StageChangeRepository
	callLogs     *database.CallLogRepository
	notes        *database.NoteRepository
	listCache    *cache.ListCache
	logger       *logrus.Logger
}

// NewCaseService creates a new case service
func NewCaseService(
	cases *database.CaseRepository,
	bankForms *database.BankFormRepository,
	stageChanges *database.StageChangeRepository,
	callLogs *database.CallLogRepository,
	notes *database.NoteRepository,
	listCache *cache.ListCache,
	logger *logrus.Logger,
) *CaseService {
	return &CaseService{
		cases:        cases,
		bankForms:    bankForms,
		stageChanges: stageChanges,
		callLogs:     callLogs,
		notes:        notes,
		listCache:    listCache,
		logger:       logger,
	}
}

// List returns a filtered page of cases
func (s *CaseService) List(ctx context.Context, filter models.CaseListFilter) (*CasePage, error) {
	signature := fmt.Sprintf("stage=%s&client=%s&q=%s&page=%d&size=%d",
		filter.Stage, filter.ClientID, filter.Search, filter.Page, filter.PageSize)

	if s.listCache != nil {
		var page CasePage
		if err := s.listCache.Get(ctx, cacheEntityCases, signature, &page); err == nil {
			return &page, nil
		}
	}

	items, total, err := s.cases.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	page := &CasePage{Items: items, Total: total}
	if s.listCache != nil {
		if err := s.listCache.Set(ctx, cacheEntityCases, signature, page); err != nil {
			s.logger.WithError(err).Warn("Failed to cache case page")
		}
	}
	return page, nil
}

// ListByClient returns all cases belonging to a client
func (s *CaseService) ListByClient(clientID uuid.UUID) ([]models.Case, error) {
	return s.cases.ListByClient(clientID)
}

// Get returns a case with checklist, history and derived LTV attached
func (s *CaseService) Get(caseID uuid.UUID) (*models.CaseDetail, error) {
	c, err := s.cases.GetByID(caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	detail := &models.CaseDetail{
		Case:         *c,
		EstimatedLTV: c.LTV(),
	}

	if detail.BankForms, err = s.bankForms.GetByCase(caseID); err != nil {
		return nil, fmt.Errorf("failed to list bank forms: %w", err)
	}
	present := make(map[pipeline.BankFormKind]pipeline.FormStatus, len(detail.BankForms))
	for _, form := range detail.BankForms {
		present[form.Kind] = form.Status
	}
	detail.MissingFormKinds = pipeline.MissingBankFormKinds(present)

	if detail.CallLogs, err = s.callLogs.ListByCase(caseID); err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	if detail.Notes, err = s.notes.ListByCase(caseID); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if detail.StageChanges, err = s.stageChanges.ListByCase(caseID); err != nil {
		return nil, fmt.Errorf("failed to list stage changes: %w", err)
	}
	return detail, nil
}

// Advance moves a case one stage forward. Advancing past the last active
// stage reaches disbursed. A missing checklist item never blocks the move;
// the checklist is advisory.
func (s *CaseService) Advance(ctx context.Context, caseID uuid.UUID, notes string, actorID uuid.UUID) (*models.Case, error) {
	return s.transition(ctx, caseID, actorID, func(current pipeline.Stage, now time.Time) (pipeline.StageChange, error) {
		return pipeline.Advance(current, notes, now)
	})
}

// Decline closes a case as declined. A non-empty reason is required.
func (s *CaseService) Decline(ctx context.Context, caseID uuid.UUID, reason string, actorID uuid.UUID) (*models.Case, error) {
	return s.transition(ctx, caseID, actorID, func(current pipeline.Stage, now time.Time) (pipeline.StageChange, error) {
		return pipeline.Decline(current, reason, now)
	})
}

// Withdraw closes a case as withdrawn. A non-empty reason is required.
func (s *CaseService) Withdraw(ctx context.Context, caseID uuid.UUID, reason string, actorID uuid.UUID) (*models.Case, error) {
	return s.transition(ctx, caseID, actorID, func(current pipeline.Stage, now time.Time) (pipeline.StageChange, error) {
		return pipeline.Withdraw(current, reason, now)
	})
}

// SetStage moves a case to an arbitrary stage, including backward moves and
// reopening a terminal case. For corrections; the jump is still recorded.
func (s *CaseService) SetStage(ctx context.Context, caseID uuid.UUID, target, notes string, actorID uuid.UUID) (*models.Case, error) {
	stage, err := pipeline.ParseStage(target)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, caseID, actorID, func(current pipeline.Stage, now time.Time) (pipeline.StageChange, error) {
		return pipeline.SetStage(current, stage, notes, now)
	})
}

func (s *CaseService) transition(ctx context.Context, caseID uuid.UUID, actorID uuid.UUID, fn func(pipeline.Stage, time.Time) (pipeline.StageChange, error)) (*models.Case, error) {
	c, err := s.cases.GetByID(caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	change, err := fn(c.Stage, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.cases.UpdateStage(caseID, change.ToStage); err != nil {
		return nil, fmt.Errorf("failed to update case stage: %w", err)
	}

	record := &models.StageChangeRecord{
		ID:          uuid.New(),
		CaseID:      caseID,
		FromStage:   string(change.FromStage),
		ToStage:     string(change.ToStage),
		ChangedByID: actorID,
		ChangedAt:   change.ChangedAt,
	}
	if change.Notes != "" {
		record.Notes = models.NullString{NullString: sql.NullString{String: change.Notes, Valid: true}}
	}
	if err := s.stageChanges.Create(record); err != nil {
		s.logger.WithField("case_id", caseID).WithError(err).Error("Failed to record stage change")
	}

	c.Stage = change.ToStage
	s.invalidate(ctx, cacheEntityCases)

	s.logger.WithFields(logrus.Fields{
		"case_id":     caseID,
		"case_number": c.CaseNumber,
		"from_stage":  change.FromStage,
		"to_stage":    change.ToStage,
	}).Info("Case stage changed")

	return c, nil
}

func (s *CaseService) invalidate(ctx context.Context, entity string) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.InvalidateEntity(ctx, entity); err != nil {
		s.logger.WithField("entity", entity).WithError(err).Warn("Failed to invalidate cache")
	}
}
