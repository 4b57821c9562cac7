package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
)

// SLAService flags leads whose source response-time budget has lapsed
// without a first touch. The flag is informational; nothing downstream
// blocks on it.
type SLAService struct {
	leads  *database.LeadRepository
	logger *logrus.Logger
}

// NewSLAService creates a new SLA service
func NewSLAService(leads *database.LeadRepository, logger *logrus.Logger) *SLAService {
	return &SLAService{leads: leads, logger: logger}
}

// Sweep marks every unanswered lead past its source's SLA budget.
// Returns the number of leads newly flagged.
func (s *SLAService) Sweep() (int64, error) {
	start := time.Now()
	flagged, err := s.leads.MarkSLABreaches(start)
	if err != nil {
		s.logger.WithError(err).Error("SLA sweep failed")
		return 0, err
	}

	if flagged > 0 {
		s.logger.WithFields(logrus.Fields{
			"flagged":  flagged,
			"duration": time.Since(start).String(),
		}).Info("SLA sweep flagged unanswered leads")
	}
	return flagged, nil
}
