package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	StatusNew      EventStatus = "new"
	StatusUpdated  EventStatus = "updated"
	StatusInactive EventStatus = "inactive"
	StatusImported EventStatus = "imported"
)

// EventStatuses lists the status pipeline in lifecycle order.
var EventStatuses = []EventStatus{StatusNew, StatusUpdated, StatusInactive, StatusImported}

func (s EventStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusUpdated, StatusInactive, StatusImported:
		return true
	}
	return false
}

func ParseEventStatus(raw string) (EventStatus, error) {
	s := EventStatus(helpers.StringTrim(raw))
	if !s.IsValid() {
		return "", ValidationError(fmt.Sprintf("invalid status %q", raw))
	}
	return s, nil
}

type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title" validate:"required"`
	Description  string             `bson:"description" json:"description"`
	ShortSummary string             `bson:"shortSummary" json:"shortSummary"`

	DateTime    time.Time `bson:"dateTime" json:"dateTime"`
	EndDateTime time.Time `bson:"endDateTime" json:"endDateTime"`

	VenueName    string `bson:"venueName" json:"venueName"`
	VenueAddress string `bson:"venueAddress" json:"venueAddress"`
	City         string `bson:"city" json:"city"`

	Category []string `bson:"category" json:"category"`
	Tags     []string `bson:"tags" json:"tags"`

	ImageURL         string `bson:"imageUrl" json:"imageUrl"`
	MirroredImageURL string `bson:"mirroredImageUrl,omitempty" json:"mirroredImageUrl,omitempty"`

	// SCRAPER SOURCE
	SourceName    string `bson:"sourceName" json:"sourceName" validate:"required"`
	SourceURL     string `bson:"sourceUrl" json:"sourceUrl" validate:"required,url"`
	SourceEventID string `bson:"sourceEventId" json:"sourceEventId"`

	EventHash     string      `bson:"eventHash" json:"eventHash"`
	Status        EventStatus `bson:"status" json:"status" validate:"required,oneof=new updated inactive imported"`
	LastScrapedAt time.Time   `bson:"lastScrapedAt" json:"lastScrapedAt"`

	// DASHBOARD IMPORT
	ImportedAt  *time.Time          `bson:"importedAt,omitempty" json:"importedAt,omitempty"`
	ImportedBy  *primitive.ObjectID `bson:"importedBy,omitempty" json:"importedBy,omitempty"`
	ImportNotes string              `bson:"importNotes" json:"importNotes"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EventPayload is the ingestion body. Nil fields are "not sent", which lets the
// same type serve full creates and partial updates.
type EventPayload struct {
	Title         *string      `json:"title"`
	Description   *string      `json:"description"`
	ShortSummary  *string      `json:"shortSummary"`
	DateTime      *time.Time   `json:"dateTime"`
	EndDateTime   *time.Time   `json:"endDateTime"`
	VenueName     *string      `json:"venueName"`
	VenueAddress  *string      `json:"venueAddress"`
	City          *string      `json:"city"`
	Category      []string     `json:"category"`
	Tags          []string     `json:"tags"`
	ImageURL      *string      `json:"imageUrl"`
	SourceName    *string      `json:"sourceName"`
	SourceURL     *string      `json:"sourceUrl"`
	SourceEventID *string      `json:"sourceEventId"`
	Status        *EventStatus `json:"status"`
}

// ComputeEventHash derives the dedup key from the source identity and start time.
// The start is normalised to UTC milliseconds, the precision the store keeps.
// Each field is length-prefixed so no two distinct identities share an input.
func ComputeEventHash(sourceName, sourceEventID string, start time.Time) string {
	h := sha256.New()
	for _, field := range []string{sourceName, sourceEventID, normalizeTime(start).Format(time.RFC3339Nano)} {
		fmt.Fprintf(h, "%d:%s;", len(field), field)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NextStatus is the re-ingestion rule: a content change moves any record that
// has not been imported to "updated".
func NextStatus(current EventStatus, contentChanged bool) EventStatus {
	if contentChanged && current != StatusImported {
		return StatusUpdated
	}
	return current
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return helpers.StringTrim(*s)
}

// DedupHash computes the hash a payload would be stored under.
func (p *EventPayload) DedupHash() (string, error) {
	if p.SourceName == nil || derefTrim(p.SourceName) == "" {
		return "", ValidationError("sourceName is required")
	}
	if p.DateTime == nil || p.DateTime.IsZero() {
		return "", ValidationError("dateTime is required")
	}
	return ComputeEventHash(derefTrim(p.SourceName), derefTrim(p.SourceEventID), *p.DateTime), nil
}

// NewEvent builds a validated, hashed record ready for insertion.
func NewEvent(p *EventPayload, defaultCity string, now time.Time) (*Event, error) {
	if p == nil {
		return nil, ValidationError("event payload is required")
	}
	e := &Event{
		Category: []string{},
		Tags:     []string{},
		Status:   StatusNew,
	}
	e.applyPayload(p)
	if e.DateTime.IsZero() {
		return nil, ValidationError("dateTime is required")
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return nil, ValidationError(fmt.Sprintf("invalid status %q", *p.Status))
		}
		e.Status = *p.Status
	}
	if e.City == "" {
		e.City = defaultCity
	}
	e.finalize(now)
	e.ID = primitive.NewObjectID()
	e.CreatedAt = e.UpdatedAt
	if err := ValidateStruct(e); err != nil {
		return nil, err
	}
	return e, nil
}

// ApplyIngestion merges a re-scrape into an existing record and runs the
// status rule. An explicit "inactive" from the scraper retires the event; any
// other status in the payload is ignored so a refresh cannot revert an import.
func (e *Event) ApplyIngestion(p *EventPayload, now time.Time) error {
	if p == nil {
		return ValidationError("event payload is required")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return ValidationError(fmt.Sprintf("invalid status %q", *p.Status))
	}
	changed := e.applyPayload(p)
	if p.Status != nil && *p.Status == StatusInactive {
		e.Status = StatusInactive
	} else {
		e.Status = NextStatus(e.Status, changed)
	}
	e.finalize(now)
	return ValidateStruct(e)
}

func (e *Event) finalize(now time.Time) {
	if e.EndDateTime.IsZero() {
		e.EndDateTime = e.DateTime
	}
	if e.Category == nil {
		e.Category = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.EventHash = ComputeEventHash(e.SourceName, e.SourceEventID, e.DateTime)
	stamp := normalizeTime(now)
	e.LastScrapedAt = stamp
	e.UpdatedAt = stamp
}

// applyPayload copies the sent fields and reports whether any tracked content
// field (title, description, start time, venue name) changed.
func (e *Event) applyPayload(p *EventPayload) bool {
	changed := false
	if p.Title != nil {
		v := derefTrim(p.Title)
		changed = changed || v != e.Title
		e.Title = v
	}
	if p.Description != nil {
		changed = changed || *p.Description != e.Description
		e.Description = *p.Description
	}
	if p.ShortSummary != nil {
		e.ShortSummary = *p.ShortSummary
	}
	if p.DateTime != nil && !p.DateTime.IsZero() {
		v := normalizeTime(*p.DateTime)
		changed = changed || !v.Equal(e.DateTime)
		e.DateTime = v
	}
	if p.EndDateTime != nil && !p.EndDateTime.IsZero() {
		e.EndDateTime = normalizeTime(*p.EndDateTime)
	}
	if p.VenueName != nil {
		v := derefTrim(p.VenueName)
		changed = changed || v != e.VenueName
		e.VenueName = v
	}
	if p.VenueAddress != nil {
		e.VenueAddress = derefTrim(p.VenueAddress)
	}
	if p.City != nil {
		e.City = derefTrim(p.City)
	}
	if p.Category != nil {
		e.Category = helpers.NormalizeList(p.Category)
	}
	if p.Tags != nil {
		e.Tags = helpers.NormalizeList(p.Tags)
	}
	if p.ImageURL != nil {
		e.ImageURL = derefTrim(p.ImageURL)
	}
	if p.SourceName != nil {
		e.SourceName = derefTrim(p.SourceName)
	}
	if p.SourceURL != nil {
		e.SourceURL = derefTrim(p.SourceURL)
	}
	if p.SourceEventID != nil {
		e.SourceEventID = derefTrim(p.SourceEventID)
	}
	return changed
}
