package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CountRow struct {
	ID    string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

type StatusTotals struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	New      int64 `json:"new"`
	Updated  int64 `json:"updated"`
	Imported int64 `json:"imported"`
	Inactive int64 `json:"inactive"`
}

type EventStats struct {
	Totals     StatusTotals `json:"totals"`
	Categories []CountRow   `json:"categories"`
	Sources    []CountRow   `json:"sources"`
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	GetEventByHash(ctx context.Context, hash string) (*Event, error)
	SaveIngestedEvent(ctx context.Context, event *Event) (*Event, error)
	ListEvents(ctx context.Context, q EventQuery) ([]*Event, error)
	CountEvents(ctx context.Context, filter bson.M) (int64, error)
	MarkImported(ctx context.Context, id, userID primitive.ObjectID, notes string, at time.Time) (*Event, error)
	SetEventStatus(ctx context.Context, id primitive.ObjectID, status EventStatus, at time.Time) (*Event, error)
	SetMirroredImage(ctx context.Context, id primitive.ObjectID, url string) error
	BulkSetStatus(ctx context.Context, ids []primitive.ObjectID, status EventStatus, userID primitive.ObjectID, at time.Time) (matched, modified int64, err error)
	EventStats(ctx context.Context) (*EventStats, error)
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, translate("insert event", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) findEvent(ctx context.Context, filter bson.M) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	var event Event
	if err := col.FindOne(ctx, filter).Decode(&event); err != nil {
		return nil, translate("find event", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	return mdb.findEvent(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetEventByHash(ctx context.Context, hash string) (*Event, error) {
	return mdb.findEvent(ctx, bson.M{"eventHash": hash})
}

// SaveIngestedEvent writes the scraper-owned fields of event. Import metadata
// is left untouched so a concurrent dashboard import is not clobbered.
func (mdb *MongodbRepo) SaveIngestedEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	update := bson.M{
		"$set": bson.M{
			"title":         event.Title,
			"description":   event.Description,
			"shortSummary":  event.ShortSummary,
			"dateTime":      event.DateTime,
			"endDateTime":   event.EndDateTime,
			"venueName":     event.VenueName,
			"venueAddress":  event.VenueAddress,
			"city":          event.City,
			"category":      event.Category,
			"tags":          event.Tags,
			"imageUrl":      event.ImageURL,
			"sourceName":    event.SourceName,
			"sourceUrl":     event.SourceURL,
			"sourceEventId": event.SourceEventID,
			"eventHash":     event.EventHash,
			"status":        event.Status,
			"lastScrapedAt": event.LastScrapedAt,
			"updatedAt":     event.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var saved Event
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": event.ID}, update, opts).Decode(&saved); err != nil {
		return nil, translate("update event", err)
	}
	return &saved, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, q EventQuery) ([]*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	filter := q.Filter
	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("find events", err)
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	return events, nil
}

func (mdb *MongodbRepo) CountEvents(ctx context.Context, filter bson.M) (int64, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return 0, err
	}
	if filter == nil {
		filter = bson.M{}
	}
	n, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, translate("count events", err)
	}
	return n, nil
}

func (mdb *MongodbRepo) updateEvent(ctx context.Context, id primitive.ObjectID, set bson.M) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&event); err != nil {
		return nil, translate("update event", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) MarkImported(ctx context.Context, id, userID primitive.ObjectID, notes string, at time.Time) (*Event, error) {
	return mdb.updateEvent(ctx, id, bson.M{
		"status":      StatusImported,
		"importedAt":  at,
		"importedBy":  userID,
		"importNotes": notes,
		"updatedAt":   at,
	})
}

func (mdb *MongodbRepo) SetEventStatus(ctx context.Context, id primitive.ObjectID, status EventStatus, at time.Time) (*Event, error) {
	return mdb.updateEvent(ctx, id, bson.M{
		"status":    status,
		"updatedAt": at,
	})
}

func (mdb *MongodbRepo) SetMirroredImage(ctx context.Context, id primitive.ObjectID, url string) error {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"mirroredImageUrl": url}})
	if err != nil {
		return translate("set mirrored image", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set mirrored image: %w", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) BulkSetStatus(ctx context.Context, ids []primitive.ObjectID, status EventStatus, userID primitive.ObjectID, at time.Time) (int64, int64, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return 0, 0, err
	}
	set := bson.M{
		"status":    status,
		"updatedAt": at,
	}
	if status == StatusImported {
		set["importedAt"] = at
		set["importedBy"] = userID
	}

	res, err := col.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": set})
	if err != nil {
		return 0, 0, translate("bulk update status", err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

func (mdb *MongodbRepo) aggregateCounts(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]CountRow, error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating events: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []CountRow{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding aggregation: %w", err)
	}
	return rows, nil
}

func (mdb *MongodbRepo) EventStats(ctx context.Context) (*EventStats, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}

	// One grouped pass gives every per-status count.
	byStatus, err := mdb.aggregateCounts(ctx, col, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	stats := &EventStats{Totals: TotalsFromStatusCounts(byStatus)}

	stats.Categories, err = mdb.aggregateCounts(ctx, col, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": StatusInactive}}}},
		{{Key: "$unwind", Value: "$category"}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}

	stats.Sources, err = mdb.aggregateCounts(ctx, col, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$sourceName", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// TotalsFromStatusCounts folds a group-by-status result into the overview totals.
func TotalsFromStatusCounts(rows []CountRow) StatusTotals {
	var t StatusTotals
	for _, r := range rows {
		t.Total += r.Count
		switch EventStatus(r.ID) {
		case StatusNew:
			t.New = r.Count
		case StatusUpdated:
			t.Updated = r.Count
		case StatusImported:
			t.Imported = r.Count
		case StatusInactive:
			t.Inactive = r.Count
		}
	}
	t.Active = t.Total - t.Inactive
	return t
}
