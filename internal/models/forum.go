package models

import (
	"errors"
	"time"
)

type ForumCategory struct {
	ID          string `bson:"_id" json:"category_id" yaml:"id"`
	Name        string `bson:"name" json:"name" yaml:"name"`
	Description string `bson:"description" json:"description" yaml:"description"`
	SortOrder   int    `bson:"sort_order" json:"sort_order" yaml:"sort_order"`
}

func (c *ForumCategory) Validate() error {
	if c.ID == "" || c.Name == "" {
		return errors.New("category is missing id or name")
	}
	return nil
}

type ForumThread struct {
	ID             string    `bson:"_id" json:"thread_id"`
	CategoryID     string    `bson:"category_id" json:"category_id"`
	Title          string    `bson:"title" json:"title"`
	Body           string    `bson:"body" json:"body"`
	AuthorUID      string    `bson:"author_uid" json:"author_uid"`
	AuthorUsername string    `bson:"author_username" json:"author_username"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	LastReplyAt    time.Time `bson:"last_reply_at" json:"last_reply_at"`
}

func (t *ForumThread) Validate() error {
	if t.ID == "" || t.CategoryID == "" {
		return errors.New("thread is missing id or category")
	}
	return nil
}

type ForumReply struct {
	ID             string    `bson:"_id" json:"reply_id"`
	ThreadID       string    `bson:"thread_id" json:"thread_id"`
	Body           string    `bson:"body" json:"body"`
	AuthorUID      string    `bson:"author_uid" json:"author_uid"`
	AuthorUsername string    `bson:"author_username" json:"author_username"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

func (r *ForumReply) Validate() error {
	if r.ID == "" || r.ThreadID == "" {
		return errors.New("reply is missing id or thread")
	}
	return nil
}
