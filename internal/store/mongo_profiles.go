package store

import (
	"context"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

type usernameDoc struct {
	Username string `bson:"_id"`
	UID      string `bson:"uid"`
}

// ReserveUsername claims username for uid. The username is the document id, so a
// second reservation fails with ErrDuplicate.
func (s *MongoStore) ReserveUsername(ctx context.Context, username, uid string) error {
	_, err := s.col(colUsernames).InsertOne(ctx, usernameDoc{Username: username, UID: uid})
	return mapMongoErr(err)
}

func (s *MongoStore) ReleaseUsername(ctx context.Context, username string) error {
	_, err := s.col(colUsernames).DeleteOne(ctx, bson.M{"_id": username})
	return mapMongoErr(err)
}

func (s *MongoStore) LookupUsername(ctx context.Context, username string) (string, error) {
	var doc usernameDoc
	if err := s.col(colUsernames).FindOne(ctx, bson.M{"_id": username}).Decode(&doc); err != nil {
		return "", mapMongoErr(err)
	}
	return doc.UID, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.col(colUsers).InsertOne(ctx, u)
	return mapMongoErr(err)
}

func (s *MongoStore) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(colUsers), bson.M{"_id": uid}, uid)
}

func (s *MongoStore) UpdateUser(ctx context.Context, uid string, upd models.ProfileUpdate) error {
	set := bson.M{}
	if upd.DisplayName != nil {
		set["display_name"] = *upd.DisplayName
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.ThemePreset != nil {
		set["theme_preset"] = *upd.ThemePreset
	}
	if upd.AvatarURL != nil {
		set["avatar_url"] = *upd.AvatarURL
	}
	if len(set) == 0 {
		return nil
	}
	return matched(s.col(colUsers).UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": set}))
}
