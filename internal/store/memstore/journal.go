package memstore

import (
	"context"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
)

func (s *Store) CreateArchive(_ context.Context, a *models.Archive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateArchive"); err != nil {
		return err
	}
	s.archives[a.ID] = *a
	return nil
}

func (s *Store) GetArchive(_ context.Context, id string) (*models.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetArchive"); err != nil {
		return nil, err
	}
	a, ok := s.archives[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := store.CheckRecord("archives", id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListArchivesByUser(_ context.Context, uid string) ([]models.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListArchivesByUser"); err != nil {
		return nil, err
	}
	out := make([]models.Archive, 0)
	for id, a := range s.archives {
		if a.UID != uid {
			continue
		}
		if err := store.CheckRecord("archives", id, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sortByTime(out, func(a models.Archive) time.Time { return a.UpdatedAt }, true)
	return out, nil
}

func (s *Store) UpdateArchive(_ context.Context, id, title, description string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateArchive"); err != nil {
		return err
	}
	a, ok := s.archives[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Title, a.Description, a.UpdatedAt = title, description, at
	s.archives[id] = a
	return nil
}

func (s *Store) TouchArchive(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("TouchArchive"); err != nil {
		return err
	}
	a, ok := s.archives[id]
	if !ok {
		return store.ErrNotFound
	}
	a.UpdatedAt = at
	s.archives[id] = a
	return nil
}

func (s *Store) DeleteArchive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteArchive"); err != nil {
		return err
	}
	if _, ok := s.archives[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.archives, id)
	return nil
}

func (s *Store) CreateEntry(_ context.Context, e *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateEntry"); err != nil {
		return err
	}
	cp := *e
	cp.Tags = append([]string(nil), e.Tags...)
	s.entries[e.ID] = cp
	return nil
}

func (s *Store) GetEntry(_ context.Context, id string) (*models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetEntry"); err != nil {
		return nil, err
	}
	e, ok := s.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := store.CheckRecord("entries", id, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) listEntries(match func(models.JournalEntry) bool) ([]models.JournalEntry, error) {
	out := make([]models.JournalEntry, 0)
	for id, e := range s.entries {
		if !match(e) {
			continue
		}
		if err := store.CheckRecord("entries", id, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sortByTime(out, func(e models.JournalEntry) time.Time { return e.CreatedAt }, true)
	return out, nil
}

func (s *Store) ListEntriesByAuthor(_ context.Context, uid string) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListEntriesByAuthor"); err != nil {
		return nil, err
	}
	return s.listEntries(func(e models.JournalEntry) bool { return e.AuthorUID == uid })
}

func (s *Store) ListEntriesByArchive(_ context.Context, archiveID string) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListEntriesByArchive"); err != nil {
		return nil, err
	}
	return s.listEntries(func(e models.JournalEntry) bool { return e.ArchiveID == archiveID })
}

func (s *Store) UpdateEntry(_ context.Context, id string, upd models.EntryUpdate, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateEntry"); err != nil {
		return err
	}
	e, ok := s.entries[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Body != nil {
		e.Body = *upd.Body
	}
	if upd.SetTags {
		e.Tags = append([]string(nil), upd.Tags...)
	}
	if upd.Visibility != nil {
		e.Visibility = *upd.Visibility
	}
	e.UpdatedAt = at
	s.entries[id] = e
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteEntry"); err != nil {
		return err
	}
	if _, ok := s.entries[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// PutRawEntry stores e without any checks, for simulating corrupt records.
func (s *Store) PutRawEntry(e models.JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
}

func (s *Store) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateComment"); err != nil {
		return err
	}
	s.comments[c.EntryID] = append(s.comments[c.EntryID], *c)
	return nil
}

func (s *Store) ListComments(_ context.Context, entryID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListComments"); err != nil {
		return nil, err
	}
	out := append(make([]models.Comment, 0), s.comments[entryID]...)
	for i := range out {
		if err := store.CheckRecord("comments", out[i].ID, &out[i]); err != nil {
			return nil, err
		}
	}
	sortByTime(out, func(c models.Comment) time.Time { return c.CreatedAt }, false)
	return out, nil
}

func (s *Store) DeleteComments(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteComments"); err != nil {
		return err
	}
	delete(s.comments, entryID)
	return nil
}
