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

// Cache entity names. Any write to an entity invalidates all of its
// cached list pages.
const (
	cacheEntityLeads   = "leads"
	cacheEntityClients = "clients"
	cacheEntityCases   = "cases"
)

// LeadPage is one cached page of a lead listing
type LeadPage struct {
	Items []models.Lead `json:"items"`
	Total int           `json:"total"`
}

// LeadService handles lead capture and qualification
type LeadService struct {
	leads         *database.LeadRepository
	clients       *database.ClientRepository
	documents     *database.DocumentRepository
	statusChanges *database.StatusChangeRepository
	callLogs      *database.CallLogRepository
	notes         *database.NoteRepository
	listCache     *cache.ListCache
	logger        *logrus.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(
	leads *database.LeadRepository,
	clients *database.ClientRepository,
	documents *database.DocumentRepository,
	statusChanges *database.StatusChangeRepository,
	callLogs *database.CallLogRepository,
	notes *database.NoteRepository,
	listCache *cache.ListCache,
	logger *logrus.Logger,
) *LeadService {
	return &LeadService{
		leads:         leads,
		clients:       clients,
		documents:     documents,
		statusChanges: statusChanges,
		callLogs:      callLogs,
		notes:         notes,
		listCache:     listCache,
		logger:        logger,
	}
}

// Create captures a new lead in status "new"
func (s *LeadService) Create(ctx context.Context, req *models.CreateLeadRequest) (*models.Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := &models.Lead{
		ID:     uuid.New(),
		Name:   req.Name,
		Phone:  req.Phone,
		Status: pipeline.LeadStatusNew,
	}
	if req.Email != nil {
		lead.Email = models.NullString{NullString: sql.NullString{String: *req.Email, Valid: true}}
	}
	if req.Intent != nil {
		lead.Intent = models.NullString{NullString: sql.NullString{String: *req.Intent, Valid: true}}
	}
	if req.Campaign != nil {
		lead.Campaign = models.NullString{NullString: sql.NullString{String: *req.Campaign, Valid: true}}
	}
	if req.SourceID != nil {
		sourceID, err := uuid.Parse(*req.SourceID)
		if err != nil {
			return nil, errors.New("invalid source_id")
		}
		lead.SourceID = &sourceID
	}

	if err := s.leads.Create(lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.invalidate(ctx, cacheEntityLeads)
	s.logger.WithFields(logrus.Fields{
		"lead_id": lead.ID,
		"source":  req.SourceID,
	}).Info("Lead captured")

	return lead, nil
}

// List returns a filtered page of leads, served from the cache when possible
func (s *LeadService) List(ctx context.Context, filter models.LeadListFilter) (*LeadPage, error) {
	signature := fmt.Sprintf("status=%s&source=%s&q=%s&page=%d&size=%d",
		filter.Status, filter.SourceID, filter.Search, filter.Page, filter.PageSize)

	if s.listCache != nil {
		var page LeadPage
		if err := s.listCache.Get(ctx, cacheEntityLeads, signature, &page); err == nil {
			return &page, nil
		}
	}

	items, total, err := s.leads.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	page := &LeadPage{Items: items, Total: total}
	if s.listCache != nil {
		if err := s.listCache.Set(ctx, cacheEntityLeads, signature, page); err != nil {
			s.logger.WithError(err).Warn("Failed to cache lead page")
		}
	}
	return page, nil
}

// Get returns a lead with its activity history
func (s *LeadService) Get(leadID uuid.UUID) (*models.LeadDetail, error) {
	lead, err := s.leads.GetByID(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	detail := &models.LeadDetail{Lead: *lead}
	if detail.CallLogs, err = s.callLogs.ListByLead(leadID); err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	if detail.Notes, err = s.notes.ListByLead(leadID); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if detail.StatusChanges, err = s.statusChanges.ListByLead(leadID); err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}
	return detail, nil
}

// Drop moves a lead to the terminal "dropped" status. A reason is required
// and the transition is recorded in the status history.
func (s *LeadService) Drop(ctx context.Context, leadID uuid.UUID, reason string, actorID uuid.UUID) (*models.Lead, error) {
	lead, err := s.leads.GetByID(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	change, err := pipeline.TransitionLead(lead.Status, pipeline.LeadStatusDropped, reason, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.leads.UpdateStatus(leadID, pipeline.LeadStatusDropped); err != nil {
		return nil, fmt.Errorf("failed to drop lead: %w", err)
	}
	s.recordLeadChange(leadID, change, actorID)

	lead.Status = pipeline.LeadStatusDropped
	s.invalidate(ctx, cacheEntityLeads)

	s.logger.WithFields(logrus.Fields{
		"lead_id": leadID,
		"reason":  reason,
	}).Info("Lead dropped")

	return lead, nil
}

// Convert qualifies a lead into a client. The lead moves to the terminal
// "converted" status and a new active client is created carrying the
// financial inputs from the request. The client's document checklist is
// initialized with one missing row per required kind.
func (s *LeadService) Convert(ctx context.Context, leadID uuid.UUID, req *models.CreateClientRequest, actorID uuid.UUID) (*models.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead, err := s.leads.GetByID(leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	change, err := pipeline.TransitionLead(lead.Status, pipeline.LeadStatusConverted, "", time.Now())
	if err != nil {
		return nil, err
	}

	client := clientFromRequest(req)
	client.ConvertedFromLeadID = &lead.ID
	client.AssignedToID = lead.AssignedToID

	if err := s.clients.Create(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	if err := s.documents.InitChecklist(client.ID); err != nil {
		return nil, fmt.Errorf("failed to init document checklist: %w", err)
	}

	if err := s.leads.UpdateStatus(leadID, pipeline.LeadStatusConverted); err != nil {
		return nil, fmt.Errorf("failed to mark lead converted: %w", err)
	}
	if err := s.leads.LinkConvertedClient(leadID, client.ID); err != nil {
		return nil, fmt.Errorf("failed to link converted client: %w", err)
	}

	s.recordLeadChange(leadID, change, actorID)

	// The client's history opens with a marker row so its origin is
	// visible without walking back to the lead.
	s.recordClientChange(client.ID, pipeline.StatusChange{
		FromStatus: "",
		ToStatus:   string(pipeline.ClientStatusActive),
		Reason:     pipeline.ChangeReasonConvertedFromLead,
		ChangedAt:  time.Now(),
	}, actorID)

	s.invalidate(ctx, cacheEntityLeads)
	s.invalidate(ctx, cacheEntityClients)

	s.logger.WithFields(logrus.Fields{
		"lead_id":   leadID,
		"client_id": client.ID,
	}).Info("Lead converted to client")

	return client, nil
}

func (s *LeadService) recordLeadChange(leadID uuid.UUID, change pipeline.StatusChange, actorID uuid.UUID) {
	record := &models.StatusChangeRecord{
		ID:          uuid.New(),
		LeadID:      &leadID,
		FromStatus:  change.FromStatus,
		ToStatus:    change.ToStatus,
		ChangedByID: actorID,
		ChangedAt:   change.ChangedAt,
	}
	if change.Reason != "" {
		record.Reason = models.NullString{NullString: sql.NullString{String: change.Reason, Valid: true}}
	}
	if err := s.statusChanges.Create(record); err != nil {
		s.logger.WithField("lead_id", leadID).WithError(err).Error("Failed to record status change")
	}
}

func (s *LeadService) recordClientChange(clientID uuid.UUID, change pipeline.StatusChange, actorID uuid.UUID) {
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

func (s *LeadService) invalidate(ctx context.Context, entity string) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.InvalidateEntity(ctx, entity); err != nil {
		s.logger.WithField("entity", entity).WithError(err).Warn("Failed to invalidate cache")
	}
}

// clientFromRequest builds a new active client from a create request
func clientFromRequest(req *models.CreateClientRequest) *models.Client {
	client := &models.Client{
		ID:            uuid.New(),
		Name:          req.Name,
		Phone:         req.Phone,
		Residency:     pipeline.Residency(req.Residency),
		Employment:    pipeline.Employment(req.Employment),
		MonthlySalary: req.MonthlySalary,
		Status:        pipeline.ClientStatusActive,
	}
	if req.Email != nil {
		client.Email = models.NullString{NullString: sql.NullString{String: *req.Email, Valid: true}}
	}
	if req.MonthlyLiabilities != nil {
		client.MonthlyLiabilities = models.NullFloat64{NullFloat64: sql.NullFloat64{Float64: *req.MonthlyLiabilities, Valid: true}}
	}
	if req.LoanAmount != nil {
		client.LoanAmount = models.NullFloat64{NullFloat64: sql.NullFloat64{Float64: *req.LoanAmount, Valid: true}}
	}
	if req.EstimatedPropertyValue != nil {
		client.EstimatedPropertyValue = models.NullFloat64{NullFloat64: sql.NullFloat64{Float64: *req.EstimatedPropertyValue, Valid: true}}
	}
	return client
}
