package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultUserRole = "admin"

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	GoogleID  string             `bson:"googleId" json:"googleId" validate:"required"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type UserRepo interface {
	FindOrCreateByGoogleID(ctx context.Context, profile *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
}

// FindOrCreateByGoogleID returns the stored user for profile.GoogleID,
// inserting profile on first login. Existing users are returned unchanged.
func (mdb *MongodbRepo) FindOrCreateByGoogleID(ctx context.Context, profile *User) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, err
	}
	role := profile.Role
	if role == "" {
		role = DefaultUserRole
	}
	now := time.Now().UTC()

	update := bson.M{
		"$setOnInsert": bson.M{
			"googleId":  profile.GoogleID,
			"name":      profile.Name,
			"email":     profile.Email,
			"avatar":    profile.Avatar,
			"role":      role,
			"createdAt": now,
			"updatedAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user User
	if err := col.FindOneAndUpdate(ctx, bson.M{"googleId": profile.GoogleID}, update, opts).Decode(&user); err != nil {
		return nil, translate("upsert user", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, err
	}
	var user User
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}
