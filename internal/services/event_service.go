package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/bus"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/metrics"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	DefaultAllLimit    = 50
)

type EventService struct {
	repo        models.EventRepo
	publisher   bus.Publisher
	mirror      helpers.ImageMirror
	logger      *slog.Logger
	defaultCity string
	now         func() time.Time
}

// NewEventService wires the event pipeline. mirror may be nil, which disables
// image mirroring on import.
func NewEventService(repo models.EventRepo, publisher bus.Publisher, mirror helpers.ImageMirror, logger *slog.Logger, defaultCity string) *EventService {
	if publisher == nil {
		publisher = &bus.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		repo:        repo,
		publisher:   publisher,
		mirror:      mirror,
		logger:      logger,
		defaultCity: defaultCity,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ParseObjectID converts a path or body id into an ObjectID, failing with ErrValidation.
func ParseObjectID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(helpers.TrimID(raw))
	if err != nil {
		return primitive.NilObjectID, models.ValidationError("invalid event id")
	}
	return id, nil
}

func (es *EventService) CreateEvent(ctx context.Context, payload *models.EventPayload) (*models.Event, error) {
	event, err := models.NewEvent(payload, es.defaultCity, es.now())
	if err != nil {
		metrics.ObserveIngest(metrics.OutcomeInvalid)
		return nil, err
	}
	created, err := es.repo.CreateEvent(ctx, event)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			metrics.ObserveIngest(metrics.OutcomeConflict)
			return nil, fmt.Errorf("event with hash %s already exists: %w", event.EventHash, models.ErrConflict)
		}
		return nil, err
	}
	metrics.ObserveIngest(metrics.OutcomeCreated)
	metrics.ObserveTransition(string(created.Status), 1)
	es.publishEvent(ctx, bus.TopicEventCreated, created, "")
	return created, nil
}

func (es *EventService) UpdateEvent(ctx context.Context, rawID string, payload *models.EventPayload) (*models.Event, error) {
	id, err := ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	existing, err := es.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return es.applyUpdate(ctx, existing, payload)
}

// IngestEvent upserts by dedup hash. The bool reports whether a new record was created.
func (es *EventService) IngestEvent(ctx context.Context, payload *models.EventPayload) (*models.Event, bool, error) {
	if payload == nil {
		metrics.ObserveIngest(metrics.OutcomeInvalid)
		return nil, false, models.ValidationError("event payload is required")
	}
	hash, err := payload.DedupHash()
	if err != nil {
		metrics.ObserveIngest(metrics.OutcomeInvalid)
		return nil, false, err
	}
	existing, err := es.repo.GetEventByHash(ctx, hash)
	switch {
	case errors.Is(err, models.ErrNotFound):
		created, err := es.CreateEvent(ctx, payload)
		if err != nil {
			return nil, false, err
		}
		return created, true, nil
	case err != nil:
		return nil, false, err
	}
	updated, err := es.applyUpdate(ctx, existing, payload)
	if err != nil {
		return nil, false, err
	}
	return updated, false, nil
}

func (es *EventService) applyUpdate(ctx context.Context, existing *models.Event, payload *models.EventPayload) (*models.Event, error) {
	previous := existing.Status
	if err := existing.ApplyIngestion(payload, es.now()); err != nil {
		metrics.ObserveIngest(metrics.OutcomeInvalid)
		return nil, err
	}
	saved, err := es.repo.SaveIngestedEvent(ctx, existing)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			metrics.ObserveIngest(metrics.OutcomeConflict)
			return nil, fmt.Errorf("another event already uses hash %s: %w", existing.EventHash, models.ErrConflict)
		}
		return nil, err
	}
	metrics.ObserveIngest(metrics.OutcomeUpdated)

	topic := bus.TopicEventUpdated
	if saved.Status != previous {
		metrics.ObserveTransition(string(saved.Status), 1)
		if saved.Status == models.StatusInactive {
			topic = bus.TopicEventInactive
		}
	}
	es.publishEvent(ctx, topic, saved, "")
	return saved, nil
}

func (es *EventService) GetEvent(ctx context.Context, rawID string) (*models.Event, error) {
	id, err := ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	return es.repo.GetEventByID(ctx, id)
}

func (es *EventService) ListPublic(ctx context.Context, city, search string) ([]*models.Event, error) {
	return es.repo.ListEvents(ctx, models.PublicEventQuery(city, search, es.now()))
}

func (es *EventService) SearchPublic(ctx context.Context, city, search string, page, limit int) ([]*models.Event, models.Pagination, error) {
	now := es.now()
	total, err := es.repo.CountEvents(ctx, models.PublicEventFilter(city, search, now))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	events, err := es.repo.ListEvents(ctx, models.PublicSearchQuery(city, search, now, page, limit))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return events, models.NewPagination(total, page, limit), nil
}

func (es *EventService) ListDashboard(ctx context.Context, filter models.DashboardFilter) ([]*models.Event, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, models.ValidationError(fmt.Sprintf("invalid status %q", filter.Status))
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, models.ValidationError("endDate must not be before startDate")
	}
	return es.repo.ListEvents(ctx, models.DashboardEventQuery(filter))
}

func (es *EventService) ListAll(ctx context.Context, page, limit int) ([]*models.Event, models.Pagination, error) {
	total, err := es.repo.CountEvents(ctx, nil)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	events, err := es.repo.ListEvents(ctx, models.AllEventsQuery(page, limit))
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return events, models.NewPagination(total, page, limit), nil
}

// ImportEvent marks the event imported by the caller. A configured image
// mirror runs afterwards; its failure is logged and the import still succeeds.
func (es *EventService) ImportEvent(ctx context.Context, rawID string, actor *helpers.Identity, notes string) (*models.Event, error) {
	id, err := ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	userID, err := actorObjectID(actor)
	if err != nil {
		return nil, err
	}
	event, err := es.repo.MarkImported(ctx, id, userID, helpers.StringTrim(notes), es.now())
	if err != nil {
		return nil, err
	}
	metrics.ObserveTransition(string(models.StatusImported), 1)

	if es.mirror != nil && event.ImageURL != "" {
		mirrored, err := es.mirror.Mirror(ctx, event.ImageURL, event.ID.Hex())
		if err != nil {
			es.logger.Warn("image mirroring failed", "event_id", event.ID.Hex(), "error", err)
		} else if err := es.repo.SetMirroredImage(ctx, event.ID, mirrored); err != nil {
			es.logger.Warn("failed to store mirrored image", "event_id", event.ID.Hex(), "error", err)
		} else {
			event.MirroredImageURL = mirrored
		}
	}

	es.publishEvent(ctx, bus.TopicEventImported, event, actor.UserID)
	return event, nil
}

func (es *EventService) MarkInactive(ctx context.Context, rawID string, actor *helpers.Identity) (*models.Event, error) {
	id, err := ParseObjectID(rawID)
	if err != nil {
		return nil, err
	}
	event, err := es.repo.SetEventStatus(ctx, id, models.StatusInactive, es.now())
	if err != nil {
		return nil, err
	}
	metrics.ObserveTransition(string(models.StatusInactive), 1)
	actorID := ""
	if actor != nil {
		actorID = actor.UserID
	}
	es.publishEvent(ctx, bus.TopicEventInactive, event, actorID)
	return event, nil
}

// BulkUpdateStatus applies status to every id in one UpdateMany. It is not
// transactional: a failure part way leaves earlier documents updated.
func (es *EventService) BulkUpdateStatus(ctx context.Context, rawIDs []string, rawStatus string, actor *helpers.Identity) (int64, int64, error) {
	status, err := models.ParseEventStatus(rawStatus)
	if err != nil {
		return 0, 0, err
	}
	if len(rawIDs) == 0 {
		return 0, 0, models.ValidationError("eventIds must not be empty")
	}
	ids := make([]primitive.ObjectID, 0, len(rawIDs))
	for _, raw := range helpers.RemoveDuplicates(rawIDs) {
		id, err := primitive.ObjectIDFromHex(helpers.TrimID(raw))
		if err != nil {
			return 0, 0, models.ValidationError(fmt.Sprintf("invalid event id %q", raw))
		}
		ids = append(ids, id)
	}
	userID, err := actorObjectID(actor)
	if err != nil {
		return 0, 0, err
	}

	at := es.now()
	matched, modified, err := es.repo.BulkSetStatus(ctx, ids, status, userID, at)
	if err != nil {
		return 0, 0, err
	}
	metrics.ObserveTransition(string(status), modified)

	hexIDs := make([]string, len(ids))
	for i, id := range ids {
		hexIDs[i] = id.Hex()
	}
	es.publish(ctx, bus.TopicEventBulkStatus, bus.BulkStatusChanged{
		EventIDs: hexIDs,
		Status:   string(status),
		Modified: modified,
		ActorID:  actor.UserID,
		At:       at,
	})
	return matched, modified, nil
}

func (es *EventService) Stats(ctx context.Context) (*models.EventStats, error) {
	return es.repo.EventStats(ctx)
}

func actorObjectID(actor *helpers.Identity) (primitive.ObjectID, error) {
	if actor == nil {
		return primitive.NilObjectID, models.ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(actor.UserID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid identity user id: %w", models.ErrUnauthorized)
	}
	return id, nil
}

func (es *EventService) publishEvent(ctx context.Context, topic string, event *models.Event, actorID string) {
	es.publish(ctx, topic, bus.EventChanged{
		EventID:   event.ID.Hex(),
		EventHash: event.EventHash,
		Title:     event.Title,
		Status:    string(event.Status),
		ActorID:   actorID,
		At:        event.UpdatedAt,
	})
}

// publish never fails the caller; the write it reports has already happened.
func (es *EventService) publish(ctx context.Context, topic string, payload any) {
	if err := es.publisher.Publish(ctx, topic, payload); err != nil {
		es.logger.Warn("failed to publish notification", "topic", topic, "error", err)
	}
}
