package store

import (
	"context"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// friendDoc keys an edge by owner and friend so rewriting it is an upsert.
type friendDoc struct {
	ID            string `bson:"_id"`
	models.Friend `bson:",inline"`
}

func friendEdgeID(ownerUID, otherUID string) string {
	return ownerUID + ":" + otherUID
}

func (s *MongoStore) CreateFriendRequest(ctx context.Context, r *models.FriendRequest) error {
	_, err := s.col(colFriendRequests).InsertOne(ctx, r)
	return mapMongoErr(err)
}

func (s *MongoStore) GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	return findOne[models.FriendRequest](ctx, s.col(colFriendRequests), bson.M{"_id": id}, id)
}

func (s *MongoStore) UpdateFriendRequestStatus(ctx context.Context, id string, from, to models.FriendRequestStatus) error {
	col := s.col(colFriendRequests)
	res, err := col.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return mapMongoErr(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *MongoStore) ListPendingRequests(ctx context.Context, toUID string) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	filter := bson.M{"to_uid": toUID, "status": models.FriendRequestPending}
	return findAll[models.FriendRequest](ctx, s.col(colFriendRequests), filter, opts)
}

func (s *MongoStore) ListRequestsBetween(ctx context.Context, a, b string) ([]models.FriendRequest, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from_uid": a, "to_uid": b},
		bson.M{"from_uid": b, "to_uid": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.FriendRequest](ctx, s.col(colFriendRequests), filter, opts)
}

func (s *MongoStore) ReadFriendEdge(ctx context.Context, ownerUID, otherUID string) (bool, error) {
	n, err := s.col(colFriends).CountDocuments(ctx, bson.M{"_id": friendEdgeID(ownerUID, otherUID)}, options.Count().SetLimit(1))
	if err != nil {
		return false, mapMongoErr(err)
	}
	return n > 0, nil
}

func (s *MongoStore) WriteFriendEdge(ctx context.Context, f *models.Friend) error {
	doc := friendDoc{ID: friendEdgeID(f.OwnerUID, f.FriendUID), Friend: *f}
	_, err := s.col(colFriends).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (s *MongoStore) DeleteFriendEdge(ctx context.Context, ownerUID, otherUID string) error {
	_, err := s.col(colFriends).DeleteOne(ctx, bson.M{"_id": friendEdgeID(ownerUID, otherUID)})
	return mapMongoErr(err)
}

func (s *MongoStore) ListFriends(ctx context.Context, ownerUID string) ([]models.Friend, error) {
	opts := options.Find().SetSort(bson.D{{Key: "friend_username", Value: 1}})
	return findAll[models.Friend](ctx, s.col(colFriends), bson.M{"owner_uid": ownerUID}, opts)
}
