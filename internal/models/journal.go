package models

import (
	"errors"
	"fmt"
	"time"
)

// Visibility controls who may read a journal entry.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityPublic  Visibility = "public"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityFriends, VisibilityPublic:
		return true
	}
	return false
}

// Archive groups a user's journal entries. It has no access rules of its own.
type Archive struct {
	ID          string    `bson:"_id" json:"archive_id"`
	UID         string    `bson:"uid" json:"uid"`
	Username    string    `bson:"username" json:"username"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (a *Archive) Validate() error {
	if a.ID == "" || a.UID == "" {
		return errors.New("archive is missing id or owner")
	}
	return nil
}

// JournalEntry is a markdown journal entry.
type JournalEntry struct {
	ID             string     `bson:"_id" json:"entry_id"`
	ArchiveID      string     `bson:"archive_id,omitempty" json:"archive_id,omitempty"`
	AuthorUID      string     `bson:"author_uid" json:"author_uid"`
	AuthorUsername string     `bson:"author_username" json:"author_username"`
	Title          string     `bson:"title" json:"title"`
	Body           string     `bson:"body" json:"body"`
	Tags           []string   `bson:"tags" json:"tags"`
	Visibility     Visibility `bson:"visibility" json:"visibility"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

func (e *JournalEntry) Validate() error {
	if e.ID == "" || e.AuthorUID == "" {
		return errors.New("entry is missing id or author")
	}
	if !e.Visibility.Valid() {
		return fmt.Errorf("unknown visibility %q", e.Visibility)
	}
	return nil
}

// EntryUpdate carries the author-mutable entry fields. Nil fields are left unchanged.
type EntryUpdate struct {
	Title      *string
	Body       *string
	Tags       []string
	SetTags    bool
	Visibility *Visibility
}

// CommentType distinguishes plain comments from questions to the author.
type CommentType string

const (
	CommentTypeComment  CommentType = "comment"
	CommentTypeQuestion CommentType = "question"
)

func (t CommentType) Valid() bool {
	return t == CommentTypeComment || t == CommentTypeQuestion
}

// Comment is attached to exactly one entry and never changes after creation.
type Comment struct {
	ID             string      `bson:"_id" json:"comment_id"`
	EntryID        string      `bson:"entry_id" json:"entry_id"`
	AuthorUID      string      `bson:"author_uid" json:"author_uid"`
	AuthorUsername string      `bson:"author_username" json:"author_username"`
	Type           CommentType `bson:"type" json:"type"`
	Body           string      `bson:"body" json:"body"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
}

func (c *Comment) Validate() error {
	if c.ID == "" || c.EntryID == "" {
		return errors.New("comment is missing id or entry")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("unknown comment type %q", c.Type)
	}
	return nil
}
