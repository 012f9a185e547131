package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colUsers           = "users"
	colUsernames       = "usernames"
	colArchives        = "archives"
	colEntries         = "entries"
	colComments        = "comments"
	colFriendRequests  = "friend_requests"
	colFriends         = "friends"
	colForumCategories = "forum_categories"
	colForumThreads    = "forum_threads"
	colForumReplies    = "forum_replies"
)

// MongoStore implements ProfileStore, JournalStore, FriendStore and ForumStore on MongoDB.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes configures the indexes the list queries rely on.
// Called on startup from main after Mongo has connected.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("idx_username").SetUnique(true)},
		},
		colArchives: {
			{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "updated_at", Value: -1}}, Options: options.Index().SetName("idx_uid_updated")},
		},
		colEntries: {
			{Keys: bson.D{{Key: "author_uid", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_author_created")},
			{Keys: bson.D{{Key: "archive_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_archive_created")},
		},
		colComments: {
			{Keys: bson.D{{Key: "entry_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_entry_created")},
		},
		colFriendRequests: {
			{Keys: bson.D{{Key: "to_uid", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("idx_to_status")},
			{Keys: bson.D{{Key: "from_uid", Value: 1}, {Key: "to_uid", Value: 1}}, Options: options.Index().SetName("idx_from_to")},
		},
		colFriends: {
			{Keys: bson.D{{Key: "owner_uid", Value: 1}}, Options: options.Index().SetName("idx_owner")},
		},
		colForumThreads: {
			{Keys: bson.D{{Key: "category_id", Value: 1}, {Key: "last_reply_at", Value: -1}}, Options: options.Index().SetName("idx_category_last_reply")},
		},
		colForumReplies: {
			{Keys: bson.D{{Key: "thread_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_thread_created")},
		},
	}

	for name, idx := range indexes {
		if _, err := s.col(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// mapMongoErr translates driver errors into the store error set.
func mapMongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

// findOne decodes a single document and validates it.
func findOne[T any, PT interface {
	*T
	validator
}](ctx context.Context, col *mongo.Collection, filter bson.M, id string) (*T, error) {
	var v T
	if err := col.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, mapMongoErr(err)
	}
	if err := CheckRecord(col.Name(), id, PT(&v)); err != nil {
		return nil, err
	}
	return &v, nil
}

// findAll decodes every matching document and validates each.
func findAll[T any, PT interface {
	*T
	validator
}](ctx context.Context, col *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, &DecodeError{Collection: col.Name(), Err: err}
		}
		if err := CheckRecord(col.Name(), "", PT(&v)); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// matched maps an update that touched nothing to ErrNotFound.
func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
