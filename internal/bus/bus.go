package bus

import (
	"context"
	"time"
)

// Topic constants
const (
	TopicEventCreated    = "events.event.created"
	TopicEventUpdated    = "events.event.updated"
	TopicEventImported   = "events.event.imported"
	TopicEventInactive   = "events.event.inactive"
	TopicEventBulkStatus = "events.event.bulk_status"
	TopicLeadCaptured    = "events.lead.captured"
)

// EventChanged is published for single-event lifecycle changes.
type EventChanged struct {
	EventID   string    `json:"event_id"`
	EventHash string    `json:"event_hash"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	ActorID   string    `json:"actor_id,omitempty"`
	At        time.Time `json:"at"`
}

type BulkStatusChanged struct {
	EventIDs []string  `json:"event_ids"`
	Status   string    `json:"status"`
	Modified int64     `json:"modified"`
	ActorID  string    `json:"actor_id,omitempty"`
	At       time.Time `json:"at"`
}

type LeadCaptured struct {
	LeadID  string    `json:"lead_id"`
	EventID string    `json:"event_id"`
	Source  string    `json:"source"`
	At      time.Time `json:"at"`
}

// Publisher is the interface for emitting notifications.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
