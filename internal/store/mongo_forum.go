package store

import (
	"context"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) UpsertCategory(ctx context.Context, c *models.ForumCategory) error {
	_, err := s.col(colForumCategories).ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (s *MongoStore) ListCategories(ctx context.Context) ([]models.ForumCategory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})
	return findAll[models.ForumCategory](ctx, s.col(colForumCategories), bson.M{}, opts)
}

func (s *MongoStore) GetCategory(ctx context.Context, id string) (*models.ForumCategory, error) {
	return findOne[models.ForumCategory](ctx, s.col(colForumCategories), bson.M{"_id": id}, id)
}

func (s *MongoStore) CreateThread(ctx context.Context, t *models.ForumThread) error {
	_, err := s.col(colForumThreads).InsertOne(ctx, t)
	return mapMongoErr(err)
}

func (s *MongoStore) GetThread(ctx context.Context, id string) (*models.ForumThread, error) {
	return findOne[models.ForumThread](ctx, s.col(colForumThreads), bson.M{"_id": id}, id)
}

func (s *MongoStore) ListThreadsByCategory(ctx context.Context, categoryID string) ([]models.ForumThread, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_reply_at", Value: -1}})
	return findAll[models.ForumThread](ctx, s.col(colForumThreads), bson.M{"category_id": categoryID}, opts)
}

func (s *MongoStore) AppendReply(ctx context.Context, r *models.ForumReply) error {
	_, err := s.col(colForumReplies).InsertOne(ctx, r)
	return mapMongoErr(err)
}

func (s *MongoStore) ListReplies(ctx context.Context, threadID string) ([]models.ForumReply, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.ForumReply](ctx, s.col(colForumReplies), bson.M{"thread_id": threadID}, opts)
}

func (s *MongoStore) SetThreadLastReply(ctx context.Context, threadID string, at time.Time) error {
	return matched(s.col(colForumThreads).UpdateOne(ctx, bson.M{"_id": threadID}, bson.M{"$set": bson.M{"last_reply_at": at}}))
}

// AdvanceThreadLastReply uses $max so a skewed older timestamp never wins.
func (s *MongoStore) AdvanceThreadLastReply(ctx context.Context, threadID string, at time.Time) error {
	return matched(s.col(colForumThreads).UpdateOne(ctx, bson.M{"_id": threadID}, bson.M{"$max": bson.M{"last_reply_at": at}}))
}
