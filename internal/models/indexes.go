package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpecs lists the indexes every collection needs, keyed by collection.
func IndexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		EventsColName: {
			// Natural dedup key across repeated scrapes
			{
				Keys:    bson.D{{Key: "eventHash", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("event_hash_unique"),
			},
			{
				Keys:    bson.D{{Key: "dateTime", Value: 1}},
				Options: options.Index().SetName("date_time_idx"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}},
				Options: options.Index().SetName("status_idx"),
			},
			{
				Keys:    bson.D{{Key: "sourceName", Value: 1}},
				Options: options.Index().SetName("source_name_idx"),
			},
			// Compound index for dashboard filters
			{
				Keys: bson.D{
					{Key: "city", Value: 1},
					{Key: "status", Value: 1},
					{Key: "dateTime", Value: 1},
				},
				Options: options.Index().SetName("city_status_date_idx"),
			},
			{
				Keys:    bson.D{{Key: "updatedAt", Value: -1}},
				Options: options.Index().SetName("updated_at_idx"),
			},
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "description", Value: "text"},
					{Key: "venueName", Value: "text"},
				},
				Options: options.Index().SetName("event_text_idx"),
			},
		},
		LeadsColName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("lead_email_unique"),
			},
			{
				Keys:    bson.D{{Key: "eventId", Value: 1}},
				Options: options.Index().SetName("lead_event_idx"),
			},
		},
		ScrapeLogsColName: {
			{
				Keys:    bson.D{{Key: "startedAt", Value: -1}},
				Options: options.Index().SetName("started_at_idx"),
			},
			{
				Keys: bson.D{
					{Key: "sourceName", Value: 1},
					{Key: "startedAt", Value: -1},
				},
				Options: options.Index().SetName("source_started_at_idx"),
			},
		},
		UsersColName: {
			{
				Keys:    bson.D{{Key: "googleId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("google_id_unique"),
			},
		},
		SessionsColName: {
			// TTL index - documents expire at the time stored in expiresAt
			{
				Keys: bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().
					SetExpireAfterSeconds(0).
					SetName("expires_at_ttl"),
			},
		},
	}
}

// EnsureIndexes creates all indexes; existing identical indexes are a no-op.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	for colName, indexes := range IndexSpecs() {
		col, err := mdb.GetCollection(colName)
		if err != nil {
			return err
		}
		if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", colName, err)
		}
	}
	return nil
}
