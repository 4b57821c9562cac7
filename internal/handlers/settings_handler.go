package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/services"
)

// SettingsHandler handles reference data administration
type SettingsHandler struct {
	settingsService *services.SettingsService
	logger          *logrus.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *services.SettingsService, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// CreateSource registers a lead acquisition channel
func (h *SettingsHandler) CreateSource(c *gin.Context) {
	var req models.CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	source, err := h.settingsService.CreateSource(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, source)
}

// ListSources returns all lead sources
func (h *SettingsHandler) ListSources(c *gin.Context) {
	sources, err := h.settingsService.ListSources()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sources})
}

// UpdateSource applies a partial update to a source
func (h *SettingsHandler) UpdateSource(c *gin.Context) {
	sourceID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ResponseSLAMinutes != nil && *req.ResponseSLAMinutes <= 0 {
		badRequest(c, errors.New("response_sla_minutes must be greater than 0"))
		return
	}

	source, err := h.settingsService.UpdateSource(sourceID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, source)
}

// CreateBankProduct registers a partner bank's mortgage product
func (h *SettingsHandler) CreateBankProduct(c *gin.Context) {
	var req models.CreateBankProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.settingsService.CreateBankProduct(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ListBankProducts returns bank products; ?active=true filters to the
// current catalogue
func (h *SettingsHandler) ListBankProducts(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	products, err := h.settingsService.ListBankProducts(activeOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": products})
}

// DeactivateBankProduct retires a product from the active catalogue
func (h *SettingsHandler) DeactivateBankProduct(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.settingsService.DeactivateBankProduct(productID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
