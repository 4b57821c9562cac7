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

// ClientPage is one cached page of a client listing. Eligibility figures
// are recomputed per item at serve time, never cached or stored.
type ClientPage struct {
	Items []models.Client `json:"items"`
	Total int             `json:"total"`
}

// ClientService handles qualified clients and their case creation
type ClientService struct {
	clients       *database.ClientRepository
	cases         *database.CaseRepository
	documents     *database.DocumentRepository
	bankForms     *database.BankFormRepository
	statusChanges *database.StatusChangeRepository
	callLogs      *database.CallLogRepository
	notes         *database.NoteRepository
	listCache     *cache.ListCache
	logger        *logrus.Logger
}

// NewClientService creates a new client service
func NewClientService(
	clients *database.ClientRepository,
	cases *database.CaseRepository,
	documents *database.DocumentRepository,
	bankForms *database.BankFormRepository,
	statusChanges *database.StatusChangeRepository,
	callLogs *database.CallLogRepository,
	notes *database.NoteRepository,
	listCache *cache.ListCache,
	logger *logrus.Logger,
) *ClientService {
	return &ClientService{
		clients:       clients,
		cases:         cases,
		documents:     documents,
		bankForms:     bankForms,
		statusChanges: statusChanges,
		callLogs:      callLogs,
		notes:         notes,
		listCache:     listCache,
		logger:        logger,
	}
}

// Create registers a client directly, without going through a lead
func (s *ClientService) Create(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client := clientFromRequest(req)
	if err := s.clients.Create(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	if err := s.documents.InitChecklist(client.ID); err != nil {
		return nil, fmt.Errorf("failed to init document checklist: %w", err)
	}

	s.invalidate(ctx, cacheEntityClients)
	s.logger.WithField("client_id", client.ID).Info("Client created")
	return client, nil
}

// List returns a filtered page of clients
func (s *ClientService) List(ctx context.Context, filter models.ClientListFilter) (*ClientPage, error) {
	signature := fmt.Sprintf("status=%s&q=%s&page=%d&size=%d",
		filter.Status, filter.Search, filter.Page, filter.PageSize)

	if s.listCache != nil {
		var page ClientPage
		if err := s.listCache.Get(ctx, cacheEntityClients, signature, &page); err == nil {
			return &page, nil
		}
	}

	items, total, err := s.clients.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	page := &ClientPage{Items: items, Total: total}
	if s.listCache != nil {
		if err := s.listCache.Set(ctx, cacheEntityClients, signature, page); err != nil {
			s.logger.WithError(err).Warn("Failed to cache client page")
		}
	}
	return page, nil
}

// Eligibility recomputes the derived financial figures for a client
func (s *ClientService) Eligibility(clientID uuid.UUID) (*models.Eligibility, error) {
	client, err := s.clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	e := client.Eligibility()
	return &e, nil
}

// Get returns a client with eligibility, checklist and history attached
func (s *ClientService) Get(clientID uuid.UUID) (*models.ClientDetail, error) {
	client, err := s.clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	detail := &models.ClientDetail{
		Client:      *client,
		Eligibility: client.Eligibility(),
	}

	if detail.Documents, err = s.documents.GetByClient(clientID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	present := make(map[pipeline.DocumentKind]pipeline.FormStatus, len(detail.Documents))
	for _, doc := range detail.Documents {
		present[doc.Kind] = doc.Status
	}
	detail.MissingKinds = pipeline.MissingDocumentKinds(present)

	if detail.CallLogs, err = s.callLogs.ListByClient(clientID); err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	if detail.Notes, err = s.notes.ListByClient(clientID); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if detail.StatusChanges, err = s.statusChanges.ListByClient(clientID); err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}
	return detail, nil
}

// Update applies a partial edit to an active client's profile and financial
// inputs. Terminal clients reject edits.
func (s *ClientService) Update(ctx context.Context, clientID uuid.UUID, req *models.UpdateClientRequest) (*models.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client.Status.IsTerminal() {
		return nil, pipeline.ErrStatusTerminal
	}

	if err := s.clients.Update(clientID, req); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.invalidate(ctx, cacheEntityClients)
	return s.clients.GetByID(clientID)
}

// MarkNotEligible moves an active client to the terminal notEligible status
func (s *ClientService) MarkNotEligible(ctx context.Context, clientID uuid.UUID, reason string, actorID uuid.UUID) (*models.Client, error) {
	return s.closeOut(ctx, clientID, pipeline.ClientStatusNotEligible, reason, actorID)
}

// MarkNotProceeding moves an active client to the terminal notProceeding status
func (s *ClientService) MarkNotProceeding(ctx context.Context, clientID uuid.UUID, reason string, actorID uuid.UUID) (*models.Client, error) {
	return s.closeOut(ctx, clientID, pipeline.ClientStatusNotProceeding, reason, actorID)
}

func (s *ClientService) closeOut(ctx context.Context, clientID uuid.UUID, target pipeline.ClientStatus, reason string, actorID uuid.UUID) (*models.Client, error) {
	client, err := s.clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	change, err := pipeline.TransitionClient(client.Status, target, reason, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.clients.UpdateStatus(clientID, target); err != nil {
		return nil, fmt.Errorf("failed to update client status: %w", err)
	}
	s.recordChange(clientID, change, actorID)

	client.Status = target
	s.invalidate(ctx, cacheEntityClients)

	s.logger.WithFields(logrus.Fields{
		"client_id": clientID,
		"status":    target,
		"reason":    reason,
	}).Info("Client closed out")

	return client, nil
}

// CreateCase opens a mortgage case for an active client. The client moves
// to the terminal "converted" status, the case starts at the initial stage
// with a freshly allocated case number, and the bank-form checklist is
// initialized with one missing row per required kind.
func (s *ClientService) CreateCase(ctx context.Context, clientID uuid.UUID, req *models.CreateCaseRequest, actorID uuid.UUID) (*models.Case, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	now := time.Now()
	change, err := pipeline.TransitionClient(client.Status, pipeline.ClientStatusConverted, "", now)
	if err != nil {
		return nil, err
	}

	caseNumber, err := s.cases.NextCaseNumber(now.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate case number: %w", err)
	}

	c := caseFromRequest(req)
	c.CaseNumber = caseNumber
	c.ClientID = clientID
	c.AssignedToID = client.AssignedToID

	if err := s.cases.Create(c); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	if err := s.bankForms.InitChecklist(c.ID); err != nil {
		return nil, fmt.Errorf("failed to init bank form checklist: %w", err)
	}

	if err := s.clients.UpdateStatus(clientID, pipeline.ClientStatusConverted); err != nil {
		return nil, fmt.Errorf("failed to mark client converted: %w", err)
	}
	s.recordChange(clientID, change, actorID)

	s.invalidate(ctx, cacheEntityClients)
	s.invalidate(ctx, cacheEntityCases)

	s.logger.WithFields(logrus.Fields{
		"client_id":   clientID,
		"case_id":     c.ID,
		"case_number": c.CaseNumber,
	}).Info("Case opened for client")

	return c, nil
}

func (s *ClientService) recordChange(clientID uuid.UUID, change pipeline.StatusChange, actorID uuid.UUID) {
	record := &models.StatusChangeRecord{
		ID:          uuid.New(),
		ClientID:    &clientID,
		FromStatus:  change.FromStatus,
		ToStatus:    change.ToStatus,
		ChangedByID: actorID,
		ChangedAt:   change.ChangedAt,
	}
	if change.Reason != "" {
		record.Reason = models.NullString{NullString: sql.NullString{String: change.Reason, Valid: true}}
	}
	if err := s.statusChanges.Create(record); err != nil {
		s.logger.WithField("client_id", clientID).WithError(err).Error("Failed to record status change")
	}
}

func (s *ClientService) invalidate(ctx context.Context, entity string) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.InvalidateEntity(ctx, entity); err != nil {
		s.logger.WithField("entity", entity).WithError(err).Warn("Failed to invalidate cache")
	}
}

// caseFromRequest builds a new case at the initial stage from a create request
func caseFromRequest(req *models.CreateCaseRequest) *models.Case {
	c := &models.Case{
		ID:                     uuid.New(),
		LoanAmount:             req.LoanAmount,
		EstimatedPropertyValue: req.EstimatedPropertyValue,
		MortgageTermYears:      req.MortgageTermYears,
		MortgageTermMonths:     req.MortgageTermMonths,
		Stage:                  pipeline.InitialStage,
	}
	c.CaseType = nullStringFrom(req.CaseType)
	c.ServiceType = nullStringFrom(req.ServiceType)
	c.ApplicationType = nullStringFrom(req.ApplicationType)
	c.MortgageType = nullStringFrom(req.MortgageType)
	c.Emirate = nullStringFrom(req.Emirate)
	c.TransactionType = nullStringFrom(req.TransactionType)
	c.PropertyStatus = nullStringFrom(req.PropertyStatus)
	c.BankName = nullStringFrom(req.BankName)
	c.RateType = nullStringFrom(req.RateType)
	c.RatePercent = nullFloatFrom(req.RatePercent)
	c.FixedPeriodYears = nullFloatFrom(req.FixedPeriodYears)
	return c
}

func nullStringFrom(v *string) models.NullString {
	if v == nil {
		return models.NullString{}
	}
	return models.NullString{NullString: sql.NullString{String: *v, Valid: true}}
}

func nullFloatFrom(v *float64) models.NullFloat64 {
	if v == nil {
		return models.NullFloat64{}
	}
	return models.NullFloat64{NullFloat64: sql.NullFloat64{Float64: *v, Valid: true}}
}
