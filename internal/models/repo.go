package models

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	DefaultDBName     = "events_db"
	EventsColName     = "events"
	LeadsColName      = "email_leads"
	ScrapeLogsColName = "scrape_logs"
	UsersColName      = "users"
	SessionsColName   = "sessions"
)

var Validate = newValidator()

// newValidator reports field errors by their json names so messages match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	if dbName == "" {
		dbName = DefaultDBName
	}
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// Ping is used by the readiness probe.
func (mdb *MongodbRepo) Ping(ctx context.Context) error {
	if mdb.mongodbClient == nil {
		return fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Ping(ctx, readpref.Primary())
}
