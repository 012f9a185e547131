package store

import (
	"context"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) CreateArchive(ctx context.Context, a *models.Archive) error {
	_, err := s.col(colArchives).InsertOne(ctx, a)
	return mapMongoErr(err)
}

func (s *MongoStore) GetArchive(ctx context.Context, id string) (*models.Archive, error) {
	return findOne[models.Archive](ctx, s.col(colArchives), bson.M{"_id": id}, id)
}

func (s *MongoStore) ListArchivesByUser(ctx context.Context, uid string) ([]models.Archive, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return findAll[models.Archive](ctx, s.col(colArchives), bson.M{"uid": uid}, opts)
}

func (s *MongoStore) UpdateArchive(ctx context.Context, id, title, description string, at time.Time) error {
	update := bson.M{"$set": bson.M{"title": title, "description": description, "updated_at": at}}
	return matched(s.col(colArchives).UpdateOne(ctx, bson.M{"_id": id}, update))
}

func (s *MongoStore) TouchArchive(ctx context.Context, id string, at time.Time) error {
	return matched(s.col(colArchives).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": at}}))
}

func (s *MongoStore) DeleteArchive(ctx context.Context, id string) error {
	res, err := s.col(colArchives).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateEntry(ctx context.Context, e *models.JournalEntry) error {
	_, err := s.col(colEntries).InsertOne(ctx, e)
	return mapMongoErr(err)
}

func (s *MongoStore) GetEntry(ctx context.Context, id string) (*models.JournalEntry, error) {
	return findOne[models.JournalEntry](ctx, s.col(colEntries), bson.M{"_id": id}, id)
}

func (s *MongoStore) ListEntriesByAuthor(ctx context.Context, uid string) ([]models.JournalEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.JournalEntry](ctx, s.col(colEntries), bson.M{"author_uid": uid}, opts)
}

func (s *MongoStore) ListEntriesByArchive(ctx context.Context, archiveID string) ([]models.JournalEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.JournalEntry](ctx, s.col(colEntries), bson.M{"archive_id": archiveID}, opts)
}

func (s *MongoStore) UpdateEntry(ctx context.Context, id string, upd models.EntryUpdate, at time.Time) error {
	set := bson.M{"updated_at": at}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Body != nil {
		set["body"] = *upd.Body
	}
	if upd.SetTags {
		set["tags"] = upd.Tags
	}
	if upd.Visibility != nil {
		set["visibility"] = *upd.Visibility
	}
	return matched(s.col(colEntries).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}))
}

func (s *MongoStore) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.col(colEntries).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateComment(ctx context.Context, c *models.Comment) error {
	_, err := s.col(colComments).InsertOne(ctx, c)
	return mapMongoErr(err)
}

func (s *MongoStore) ListComments(ctx context.Context, entryID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.Comment](ctx, s.col(colComments), bson.M{"entry_id": entryID}, opts)
}

func (s *MongoStore) DeleteComments(ctx context.Context, entryID string) error {
	_, err := s.col(colComments).DeleteMany(ctx, bson.M{"entry_id": entryID})
	return mapMongoErr(err)
}
