package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
)

// SettingsService manages the reference data behind the pipeline:
// lead sources with their SLA budgets and partner bank products.
type SettingsService struct {
	sources  *database.SourceRepository
	products *database.BankProductRepository
	logger   *logrus.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(sources *database.SourceRepository, products *database.BankProductRepository, logger *logrus.Logger) *SettingsService {
	return &SettingsService{
		sources:  sources,
		products: products,
		logger:   logger,
	}
}

// CreateSource registers a lead acquisition channel
func (s *SettingsService) CreateSource(req *models.CreateSourceRequest) (*models.Source, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	source := &models.Source{
		ID:                 uuid.New(),
		Name:               req.Name,
		Channel:            req.Channel,
		ResponseSLAMinutes: req.ResponseSLAMinutes,
		Active:             true,
	}
	if err := s.sources.Create(source); err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source_id":   source.ID,
		"name":        source.Name,
		"sla_minutes": source.ResponseSLAMinutes,
	}).Info("Source registered")

	return source, nil
}

// ListSources returns all sources
func (s *SettingsService) ListSources() ([]models.Source, error) {
	return s.sources.List()
}

// UpdateSource applies a partial update to a source
func (s *SettingsService) UpdateSource(sourceID uuid.UUID, req *models.UpdateSourceRequest) (*models.Source, error) {
	if req.ResponseSLAMinutes != nil && *req.ResponseSLAMinutes <= 0 {
		return nil, errors.New("response_sla_minutes must be greater than 0")
	}

	if err := s.sources.Update(sourceID, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update source: %w", err)
	}
	return s.sources.GetByID(sourceID)
}

// CreateBankProduct registers a partner bank's mortgage product
func (s *SettingsService) CreateBankProduct(req *models.CreateBankProductRequest) (*models.BankProduct, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product := &models.BankProduct{
		ID:          uuid.New(),
		BankName:    req.BankName,
		ProductName: req.ProductName,
		RateType:    models.RateType(req.RateType),
		RatePercent: req.RatePercent,
		Active:      true,
	}
	if req.FixedPeriodYears != nil {
		product.FixedPeriodYears = models.NullFloat64{NullFloat64: sql.NullFloat64{Float64: *req.FixedPeriodYears, Valid: true}}
	}
	if req.MinLoanAmount != nil {
		product.MinLoanAmount = models.NullFloat64{NullFloat64: sql.NullFloat64{Float64: *req.MinLoanAmount, Valid: true}}
	}
	if req.MaxLTV != nil {
		product.MaxLTV = models.NullFloat64{NullFloat64: sql.NullFloat64{Float64: *req.MaxLTV, Valid: true}}
	}

	if err := s.products.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create bank product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"bank":       product.BankName,
		"product":    product.ProductName,
	}).Info("Bank product registered")

	return product, nil
}

// ListBankProducts returns bank products, optionally only active ones
func (s *SettingsService) ListBankProducts(activeOnly bool) ([]models.BankProduct, error) {
	return s.products.List(activeOnly)
}

// DeactivateBankProduct retires a product from the active catalogue
func (s *SettingsService) DeactivateBankProduct(productID uuid.UUID) error {
	if err := s.products.Deactivate(productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to deactivate bank product: %w", err)
	}
	return nil
}
