// Package memstore is an in-memory implementation of the store contracts.
// It backs STORE=memory for local development and the test suites.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
)

type failure struct {
	after int
	err   error
}

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	accounts   map[string]models.Account // by username
	usernames  map[string]string
	users      map[string]models.User
	archives   map[string]models.Archive
	entries    map[string]models.JournalEntry
	comments   map[string][]models.Comment
	requests   map[string]models.FriendRequest
	friends    map[string]map[string]models.Friend
	categories map[string]models.ForumCategory
	threads    map[string]models.ForumThread
	replies    map[string][]models.ForumReply

	failures map[string]*failure
}

func New() *Store {
	return &Store{
		accounts:   make(map[string]models.Account),
		usernames:  make(map[string]string),
		users:      make(map[string]models.User),
		archives:   make(map[string]models.Archive),
		entries:    make(map[string]models.JournalEntry),
		comments:   make(map[string][]models.Comment),
		requests:   make(map[string]models.FriendRequest),
		friends:    make(map[string]map[string]models.Friend),
		categories: make(map[string]models.ForumCategory),
		threads:    make(map[string]models.ForumThread),
		replies:    make(map[string][]models.ForumReply),
		failures:   make(map[string]*failure),
	}
}

// FailOn makes every later call to op return err.
func (s *Store) FailOn(op string, err error) {
	s.FailAfter(op, 0, err)
}

// FailAfter lets op succeed n more times, then return err.
func (s *Store) FailAfter(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{after: n, err: err}
}

// Heal clears every injected failure.
func (s *Store) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]*failure)
}

// fail must be called with s.mu held.
func (s *Store) fail(op string) error {
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	return f.err
}

// Accounts

func (s *Store) CreateAccount(_ context.Context, acct *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateAccount"); err != nil {
		return err
	}
	if _, ok := s.accounts[acct.Username]; ok {
		return store.ErrDuplicate
	}
	s.accounts[acct.Username] = *acct
	return nil
}

func (s *Store) GetAccountByUsername(_ context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetAccountByUsername"); err != nil {
		return nil, err
	}
	acct, ok := s.accounts[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &acct, nil
}

func (s *Store) DeleteAccount(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, acct := range s.accounts {
		if acct.UID == uid {
			delete(s.accounts, name)
		}
	}
	return nil
}

// Profiles

func (s *Store) ReserveUsername(_ context.Context, username, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ReserveUsername"); err != nil {
		return err
	}
	if _, ok := s.usernames[username]; ok {
		return store.ErrDuplicate
	}
	s.usernames[username] = uid
	return nil
}

func (s *Store) ReleaseUsername(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.usernames, username)
	return nil
}

func (s *Store) LookupUsername(_ context.Context, username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("LookupUsername"); err != nil {
		return "", err
	}
	uid, ok := s.usernames[username]
	if !ok {
		return "", store.ErrNotFound
	}
	return uid, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateUser"); err != nil {
		return err
	}
	if _, ok := s.users[u.UID]; ok {
		return store.ErrDuplicate
	}
	s.users[u.UID] = *u
	return nil
}

func (s *Store) GetUserByUID(_ context.Context, uid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByUID"); err != nil {
		return nil, err
	}
	u, ok := s.users[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := store.CheckRecord("users", uid, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUser(_ context.Context, uid string, upd models.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateUser"); err != nil {
		return err
	}
	u, ok := s.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.ThemePreset != nil {
		u.ThemePreset = *upd.ThemePreset
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	s.users[uid] = u
	return nil
}

// PutRawUser stores u without any checks, for simulating corrupt records.
func (s *Store) PutRawUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UID] = u
}

func sortByTime[T any](items []T, at func(T) time.Time, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return at(items[i]).After(at(items[j]))
		}
		return at(items[i]).Before(at(items[j]))
	})
}
