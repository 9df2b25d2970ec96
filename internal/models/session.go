package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session backs the signed session cookie; deleting it revokes the cookie.
type Session struct {
	ID        string             `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"` // TTL index field
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type SessionRepo interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
}

func (mdb *MongodbRepo) CreateSession(ctx context.Context, session *Session) error {
	col, err := mdb.GetCollection(SessionsColName)
	if err != nil {
		return err
	}
	if _, err := col.InsertOne(ctx, session); err != nil {
		return translate("insert session", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetSession(ctx context.Context, id string) (*Session, error) {
	col, err := mdb.GetCollection(SessionsColName)
	if err != nil {
		return nil, err
	}
	var session Session
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, translate("find session", err)
	}
	return &session, nil
}

func (mdb *MongodbRepo) DeleteSession(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(SessionsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("delete session", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete session: %w", ErrNotFound)
	}
	return nil
}
