package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
)

func (s *Store) UpsertCategory(_ context.Context, c *models.ForumCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertCategory"); err != nil {
		return err
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.ForumCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListCategories"); err != nil {
		return nil, err
	}
	out := make([]models.ForumCategory, 0, len(s.categories))
	for id, c := range s.categories {
		if err := store.CheckRecord("forum_categories", id, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*models.ForumCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetCategory"); err != nil {
		return nil, err
	}
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := store.CheckRecord("forum_categories", id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateThread(_ context.Context, t *models.ForumThread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateThread"); err != nil {
		return err
	}
	s.threads[t.ID] = *t
	return nil
}

func (s *Store) GetThread(_ context.Context, id string) (*models.ForumThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetThread"); err != nil {
		return nil, err
	}
	t, ok := s.threads[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := store.CheckRecord("forum_threads", id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListThreadsByCategory(_ context.Context, categoryID string) ([]models.ForumThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListThreadsByCategory"); err != nil {
		return nil, err
	}
	out := make([]models.ForumThread, 0)
	for id, t := range s.threads {
		if t.CategoryID != categoryID {
			continue
		}
		if err := store.CheckRecord("forum_threads", id, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sortByTime(out, func(t models.ForumThread) time.Time { return t.LastReplyAt }, true)
	return out, nil
}

func (s *Store) AppendReply(_ context.Context, r *models.ForumReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AppendReply"); err != nil {
		return err
	}
	s.replies[r.ThreadID] = append(s.replies[r.ThreadID], *r)
	return nil
}

func (s *Store) ListReplies(_ context.Context, threadID string) ([]models.ForumReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListReplies"); err != nil {
		return nil, err
	}
	out := append(make([]models.ForumReply, 0), s.replies[threadID]...)
	for i := range out {
		if err := store.CheckRecord("forum_replies", out[i].ID, &out[i]); err != nil {
			return nil, err
		}
	}
	sortByTime(out, func(r models.ForumReply) time.Time { return r.CreatedAt }, false)
	return out, nil
}

func (s *Store) SetThreadLastReply(_ context.Context, threadID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetThreadLastReply"); err != nil {
		return err
	}
	t, ok := s.threads[threadID]
	if !ok {
		return store.ErrNotFound
	}
	t.LastReplyAt = at
	s.threads[threadID] = t
	return nil
}

func (s *Store) AdvanceThreadLastReply(_ context.Context, threadID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AdvanceThreadLastReply"); err != nil {
		return err
	}
	t, ok := s.threads[threadID]
	if !ok {
		return store.ErrNotFound
	}
	if at.After(t.LastReplyAt) {
		t.LastReplyAt = at
		s.threads[threadID] = t
	}
	return nil
}
