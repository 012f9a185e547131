package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/google/uuid"
)

const MaxCommentLength = 2000

// ListComments returns the comments on an entry viewer may read, oldest first.
func (s *JournalService) ListComments(ctx context.Context, viewer, entryID string) ([]models.Comment, error) {
	if _, err := s.GetEntry(ctx, viewer, entryID); err != nil {
		return nil, err
	}
	comments, err := s.journal.ListComments(ctx, entryID)
	if err != nil {
		return nil, storeErr("list comments", err)
	}
	return comments, nil
}

// AddComment attaches a comment or question from caller to an entry caller may read.
func (s *JournalService) AddComment(ctx context.Context, caller, entryID string, typ models.CommentType, body string) (*models.Comment, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	if typ == "" {
		typ = models.CommentTypeComment
	}
	if !typ.Valid() {
		return nil, &utils.ValidationError{Field: "type", Message: "Type must be comment or question"}
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &utils.ValidationError{Field: "body", Message: "Comment cannot be empty"}
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return nil, &utils.ValidationError{Field: "body", Message: "Comment must be at most 2000 characters"}
	}

	if _, err := s.GetEntry(ctx, caller, entryID); err != nil {
		return nil, err
	}
	author, err := s.users.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:             uuid.NewString(),
		EntryID:        entryID,
		AuthorUID:      author.UID,
		AuthorUsername: author.Username,
		Type:           typ,
		Body:           body,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.journal.CreateComment(ctx, c); err != nil {
		return nil, storeErr("create comment", err)
	}
	return c, nil
}
