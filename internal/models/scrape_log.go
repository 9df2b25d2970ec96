package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ScrapeStatusSuccess = "success"
	ScrapeStatusFailed  = "failed"
)

type ScrapeLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SourceName     string             `bson:"sourceName" json:"sourceName" validate:"required"`
	City           string             `bson:"city" json:"city"`
	TotalFetched   int                `bson:"totalFetched" json:"totalFetched" validate:"gte=0"`
	NewEvents      int                `bson:"newEvents" json:"newEvents" validate:"gte=0"`
	UpdatedEvents  int                `bson:"updatedEvents" json:"updatedEvents" validate:"gte=0"`
	InactiveEvents int                `bson:"inactiveEvents" json:"inactiveEvents" validate:"gte=0"`
	StartedAt      time.Time          `bson:"startedAt" json:"startedAt"`
	FinishedAt     time.Time          `bson:"finishedAt" json:"finishedAt"`
	Status         string             `bson:"status" json:"status" validate:"required,oneof=success failed"`
	ErrorMessage   string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

type ScrapeLogFilter struct {
	SourceName string
	Status     string
}

func (f ScrapeLogFilter) BSON() bson.M {
	filter := bson.M{}
	if f.SourceName != "" {
		filter["sourceName"] = f.SourceName
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

type ScrapeLogRepo interface {
	CreateScrapeLog(ctx context.Context, log *ScrapeLog) (*ScrapeLog, error)
	ListScrapeLogs(ctx context.Context, filter ScrapeLogFilter, skip, limit int64) ([]*ScrapeLog, int64, error)
}

func (mdb *MongodbRepo) CreateScrapeLog(ctx context.Context, log *ScrapeLog) (*ScrapeLog, error) {
	col, err := mdb.GetCollection(ScrapeLogsColName)
	if err != nil {
		return nil, err
	}
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, log); err != nil {
		return nil, translate("insert scrape log", err)
	}
	return log, nil
}

func (mdb *MongodbRepo) ListScrapeLogs(ctx context.Context, filter ScrapeLogFilter, skip, limit int64) ([]*ScrapeLog, int64, error) {
	col, err := mdb.GetCollection(ScrapeLogsColName)
	if err != nil {
		return nil, 0, err
	}
	query := filter.BSON()

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translate("count scrape logs", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, translate("find scrape logs", err)
	}
	defer cursor.Close(ctx)

	logs := []*ScrapeLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, fmt.Errorf("error decoding scrape logs: %w", err)
	}
	return logs, total, nil
}
