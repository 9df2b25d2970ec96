package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/bus"
	"github.com/joshua-takyi/eventsadmin/internal/metrics"
	"github.com/joshua-takyi/eventsadmin/internal/models"
)

type LeadService struct {
	leadRepo  models.LeadRepo
	publisher bus.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewLeadService(leadRepo models.LeadRepo, publisher bus.Publisher, logger *slog.Logger) *LeadService {
	if publisher == nil {
		publisher = &bus.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadService{
		leadRepo:  leadRepo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CaptureLead stores a consented email. The event id is checked for shape only.
func (ls *LeadService) CaptureLead(ctx context.Context, in models.LeadInput) (*models.EmailLead, error) {
	lead, err := models.NewEmailLead(in, ls.now())
	if err != nil {
		return nil, err
	}
	saved, err := ls.leadRepo.CreateLead(ctx, lead)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
		return nil, err
	}
	metrics.LeadsCaptured.Inc()

	if err := ls.publisher.Publish(ctx, bus.TopicLeadCaptured, bus.LeadCaptured{
		LeadID:  saved.ID.Hex(),
		EventID: saved.EventID.Hex(),
		Source:  saved.Source,
		At:      saved.CreatedAt,
	}); err != nil {
		ls.logger.Warn("failed to publish notification", "topic", bus.TopicLeadCaptured, "error", err)
	}
	return saved, nil
}
