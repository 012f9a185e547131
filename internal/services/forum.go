package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxThreadBodyLength = 10000
	MaxReplyLength      = 5000
)

// ForumService runs the public forum. Forum content has no visibility tiers.
type ForumService struct {
	forum store.ForumStore
	users *UserService
	log   *zap.Logger
	now   func() time.Time

	// monotonic makes last_reply_at only move forward. When false the reply's
	// timestamp is written as is, so a reply stamped by a skewed clock can
	// move it backwards.
	monotonic bool
}

func NewForumService(forum store.ForumStore, users *UserService, log *zap.Logger, monotonic bool) *ForumService {
	return &ForumService{forum: forum, users: users, log: log, now: time.Now, monotonic: monotonic}
}

// ListCategories returns categories by sort order.
func (s *ForumService) ListCategories(ctx context.Context) ([]models.ForumCategory, error) {
	cats, err := s.forum.ListCategories(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	return cats, nil
}

// ListThreads returns a category and its threads, most recently active first.
func (s *ForumService) ListThreads(ctx context.Context, categoryID string) (*models.ForumCategory, []models.ForumThread, error) {
	cat, err := s.forum.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, storeErr("get category", err)
	}
	threads, err := s.forum.ListThreadsByCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, storeErr("list threads", err)
	}
	return cat, threads, nil
}

// GetThread returns a thread with its replies, oldest first.
func (s *ForumService) GetThread(ctx context.Context, threadID string) (*models.ForumThread, []models.ForumReply, error) {
	t, err := s.forum.GetThread(ctx, threadID)
	if err != nil {
		return nil, nil, storeErr("get thread", err)
	}
	replies, err := s.forum.ListReplies(ctx, threadID)
	if err != nil {
		return nil, nil, storeErr("list replies", err)
	}
	return t, replies, nil
}

// CreateThread opens a thread in an existing category. last_reply_at starts
// at the creation time.
func (s *ForumService) CreateThread(ctx context.Context, caller, categoryID, title, body string) (*models.ForumThread, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &utils.ValidationError{Field: "body", Message: "Body is required"}
	}
	if utf8.RuneCountInString(body) > MaxThreadBodyLength {
		return nil, &utils.ValidationError{Field: "body", Message: "Body must be at most 10000 characters"}
	}

	if _, err := s.forum.GetCategory(ctx, categoryID); err != nil {
		return nil, storeErr("get category", err)
	}
	author, err := s.users.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &models.ForumThread{
		ID:             uuid.NewString(),
		CategoryID:     categoryID,
		Title:          title,
		Body:           body,
		AuthorUID:      author.UID,
		AuthorUsername: author.Username,
		CreatedAt:      now,
		LastReplyAt:    now,
	}
	if err := s.forum.CreateThread(ctx, t); err != nil {
		return nil, storeErr("create thread", err)
	}
	return t, nil
}

// Reply validates and stamps a reply from caller, then hands it to CreateReply.
func (s *ForumService) Reply(ctx context.Context, caller, threadID, body string) (*models.ForumReply, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &utils.ValidationError{Field: "body", Message: "Reply cannot be empty"}
	}
	if utf8.RuneCountInString(body) > MaxReplyLength {
		return nil, &utils.ValidationError{Field: "body", Message: "Reply must be at most 5000 characters"}
	}
	author, err := s.users.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	r := models.ForumReply{
		ID:             uuid.NewString(),
		ThreadID:       threadID,
		Body:           body,
		AuthorUID:      author.UID,
		AuthorUsername: author.Username,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.CreateReply(ctx, threadID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReply appends reply to the thread and records its creation time as
// the thread's last reply. The reply is kept if the second step fails.
func (s *ForumService) CreateReply(ctx context.Context, threadID string, reply *models.ForumReply) error {
	if _, err := s.forum.GetThread(ctx, threadID); err != nil {
		return storeErr("get thread", err)
	}
	reply.ThreadID = threadID
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if err := s.forum.AppendReply(ctx, reply); err != nil {
		return storeErr("append reply", err)
	}

	var err error
	if s.monotonic {
		err = s.forum.AdvanceThreadLastReply(ctx, threadID, reply.CreatedAt)
	} else {
		err = s.forum.SetThreadLastReply(ctx, threadID, reply.CreatedAt)
	}
	if err != nil {
		lastReplyFailures.WithLabelValues(s.mode()).Inc()
		s.log.Error("update last reply failed",
			zap.String("thread_id", threadID),
			zap.String("reply_id", reply.ID),
			zap.Error(err),
		)
		return storeErr("update last reply", err)
	}
	return nil
}

func (s *ForumService) mode() string {
	if s.monotonic {
		return "monotonic"
	}
	return "literal"
}
