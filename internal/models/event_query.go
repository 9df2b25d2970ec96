package models

import (
	"regexp"
	"time"

	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DashboardMaxEvents = 200

// EventQuery is a fully built Find request against the events collection.
type EventQuery struct {
	Filter bson.M
	Sort   bson.D
	Skip   int64
	Limit  int64
}

type DashboardFilter struct {
	City      string
	Status    EventStatus
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}

// searchClause matches search as a case-insensitive literal substring of the
// title, description or venue name.
func searchClause(search string) bson.A {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.A{
		bson.M{"title": rx},
		bson.M{"description": rx},
		bson.M{"venueName": rx},
	}
}

// PublicEventFilter selects upcoming, non-inactive events. City is an exact
// case-insensitive match.
func PublicEventFilter(city, search string, now time.Time) bson.M {
	filter := bson.M{
		"status":   bson.M{"$ne": StatusInactive},
		"dateTime": bson.M{"$gte": now},
	}
	if c := helpers.StringTrim(city); c != "" {
		filter["city"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(c) + "$", Options: "i"}
	}
	if s := helpers.StringTrim(search); s != "" {
		filter["$or"] = searchClause(s)
	}
	return filter
}

func PublicEventQuery(city, search string, now time.Time) EventQuery {
	return EventQuery{
		Filter: PublicEventFilter(city, search, now),
		Sort:   bson.D{{Key: "dateTime", Value: 1}},
	}
}

func PublicSearchQuery(city, search string, now time.Time, page, limit int) EventQuery {
	q := PublicEventQuery(city, search, now)
	q.Skip = int64((page - 1) * limit)
	q.Limit = int64(limit)
	return q
}

func DashboardEventQuery(f DashboardFilter) EventQuery {
	filter := bson.M{}
	if c := helpers.StringTrim(f.City); c != "" {
		filter["city"] = c
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.StartDate != nil || f.EndDate != nil {
		rng := bson.M{}
		if f.StartDate != nil {
			rng["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			rng["$lte"] = *f.EndDate
		}
		filter["dateTime"] = rng
	}
	if s := helpers.StringTrim(f.Search); s != "" {
		filter["$or"] = searchClause(s)
	}
	return EventQuery{
		Filter: filter,
		Sort:   bson.D{{Key: "updatedAt", Value: -1}},
		Limit:  DashboardMaxEvents,
	}
}

func AllEventsQuery(page, limit int) EventQuery {
	return EventQuery{
		Filter: bson.M{},
		Sort:   bson.D{{Key: "createdAt", Value: -1}},
		Skip:   int64((page - 1) * limit),
		Limit:  int64(limit),
	}
}

// ExportEventQuery is used by the admin export; an empty statuses list means all.
func ExportEventQuery(statuses []EventStatus) EventQuery {
	filter := bson.M{}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return EventQuery{
		Filter: filter,
		Sort:   bson.D{{Key: "dateTime", Value: 1}},
	}
}
