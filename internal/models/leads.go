package models

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultLeadSource = "website"

type EmailLead struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Consent   bool               `bson:"consent" json:"consent"`
	EventID   primitive.ObjectID `bson:"eventId" json:"eventId"`
	Source    string             `bson:"source" json:"source"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type LeadInput struct {
	Email   string `json:"email"`
	Consent Flag   `json:"consent"`
	EventID string `json:"eventId"`
	Source  string `json:"source"`
}

// Flag decodes loosely typed form values: any JSON value other than false,
// null, 0 or "" counts as set.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte(`""`)):
		*f = false
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = n != 0
	default:
		*f = true
	}
	return nil
}

type LeadRepo interface {
	CreateLead(ctx context.Context, lead *EmailLead) (*EmailLead, error)
}

// NewEmailLead enforces consent before anything else so a refused capture
// never reaches the store.
func NewEmailLead(in LeadInput, now time.Time) (*EmailLead, error) {
	if !in.Consent {
		return nil, ValidationError("consent required")
	}
	eventID, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.EventID))
	if err != nil {
		return nil, ValidationError("eventId must be a valid id")
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = DefaultLeadSource
	}
	lead := &EmailLead{
		ID:        primitive.NewObjectID(),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Consent:   true,
		EventID:   eventID,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ValidateStruct(lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (mdb *MongodbRepo) CreateLead(ctx context.Context, lead *EmailLead) (*EmailLead, error) {
	col, err := mdb.GetCollection(LeadsColName)
	if err != nil {
		return nil, err
	}
	if lead.ID.IsZero() {
		lead.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, lead); err != nil {
		return nil, translate("insert lead", err)
	}
	return lead, nil
}
