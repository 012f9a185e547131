// Package store defines the persistence contracts used by the services and
// their MongoDB, PostgreSQL and in-memory implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrConflict is returned when a conditional update did not match the current state.
	ErrConflict = errors.New("store: conflict")
)

// DecodeError reports a stored record that could not be decoded into a valid model.
type DecodeError struct {
	Collection string
	ID         string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("store: decode %s/%s: %v", e.Collection, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type validator interface {
	Validate() error
}

// CheckRecord validates a decoded record and wraps failures in a DecodeError.
func CheckRecord(collection, id string, v validator) error {
	if err := v.Validate(); err != nil {
		return &DecodeError{Collection: collection, ID: id, Err: err}
	}
	return nil
}

// AccountStore is the identity store holding credentials.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct *models.Account) error
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// ProfileStore holds user profiles and the username -> uid reservation.
type ProfileStore interface {
	ReserveUsername(ctx context.Context, username, uid string) error
	ReleaseUsername(ctx context.Context, username string) error
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	LookupUsername(ctx context.Context, username string) (string, error)
	UpdateUser(ctx context.Context, uid string, upd models.ProfileUpdate) error
}

// JournalStore holds archives, entries and their comments.
type JournalStore interface {
	CreateArchive(ctx context.Context, a *models.Archive) error
	GetArchive(ctx context.Context, id string) (*models.Archive, error)
	ListArchivesByUser(ctx context.Context, uid string) ([]models.Archive, error)
	UpdateArchive(ctx context.Context, id, title, description string, at time.Time) error
	TouchArchive(ctx context.Context, id string, at time.Time) error
	DeleteArchive(ctx context.Context, id string) error

	CreateEntry(ctx context.Context, e *models.JournalEntry) error
	GetEntry(ctx context.Context, id string) (*models.JournalEntry, error)
	// ListEntriesByAuthor returns the author's entries newest first.
	ListEntriesByAuthor(ctx context.Context, uid string) ([]models.JournalEntry, error)
	// ListEntriesByArchive returns the archive's entries newest first.
	ListEntriesByArchive(ctx context.Context, archiveID string) ([]models.JournalEntry, error)
	UpdateEntry(ctx context.Context, id string, upd models.EntryUpdate, at time.Time) error
	DeleteEntry(ctx context.Context, id string) error

	CreateComment(ctx context.Context, c *models.Comment) error
	// ListComments returns the entry's comments oldest first.
	ListComments(ctx context.Context, entryID string) ([]models.Comment, error)
	DeleteComments(ctx context.Context, entryID string) error
}

// FriendStore holds friend requests and directional friend edges.
type FriendStore interface {
	CreateFriendRequest(ctx context.Context, r *models.FriendRequest) error
	GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error)
	// UpdateFriendRequestStatus sets the status to `to` only if it currently is `from`.
	// It returns ErrConflict when the current status differs.
	UpdateFriendRequestStatus(ctx context.Context, id string, from, to models.FriendRequestStatus) error
	ListPendingRequests(ctx context.Context, toUID string) ([]models.FriendRequest, error)
	// ListRequestsBetween returns every request a and b exchanged, in either direction.
	ListRequestsBetween(ctx context.Context, a, b string) ([]models.FriendRequest, error)

	ReadFriendEdge(ctx context.Context, ownerUID, otherUID string) (bool, error)
	WriteFriendEdge(ctx context.Context, f *models.Friend) error
	DeleteFriendEdge(ctx context.Context, ownerUID, otherUID string) error
	ListFriends(ctx context.Context, ownerUID string) ([]models.Friend, error)
}

// ForumStore holds categories, threads and replies.
type ForumStore interface {
	UpsertCategory(ctx context.Context, c *models.ForumCategory) error
	ListCategories(ctx context.Context) ([]models.ForumCategory, error)
	GetCategory(ctx context.Context, id string) (*models.ForumCategory, error)

	CreateThread(ctx context.Context, t *models.ForumThread) error
	GetThread(ctx context.Context, id string) (*models.ForumThread, error)
	// ListThreadsByCategory returns threads ordered by last reply, newest first.
	ListThreadsByCategory(ctx context.Context, categoryID string) ([]models.ForumThread, error)

	AppendReply(ctx context.Context, r *models.ForumReply) error
	// ListReplies returns replies oldest first.
	ListReplies(ctx context.Context, threadID string) ([]models.ForumReply, error)
	// SetThreadLastReply overwrites last_reply_at unconditionally.
	SetThreadLastReply(ctx context.Context, threadID string, at time.Time) error
	// AdvanceThreadLastReply moves last_reply_at forward only.
	AdvanceThreadLastReply(ctx context.Context, threadID string, at time.Time) error
}
