package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	mem     *memstore.Store
	kv      *memstore.KV
	clock   *stepClock
	users   *UserService
	friends *FriendshipService
	journal *JournalService
	forum   *ForumService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	mem := memstore.New()
	kv := memstore.NewKV()
	clock := newStepClock()

	users := NewUserService(mem, mem, NewProfileCache(kv, 0), nil, log)
	users.now = clock.Now
	friends := NewFriendshipService(mem, users, log)
	friends.now = clock.Now
	journal := NewJournalService(mem, users, friends, log)
	journal.now = clock.Now
	forum := NewForumService(mem, users, log, true)
	forum.now = clock.Now

	return &testEnv{
		mem:     mem,
		kv:      kv,
		clock:   clock,
		users:   users,
		friends: friends,
		journal: journal,
		forum:   forum,
	}
}

// seedUser creates a profile directly in the store, skipping password hashing.
func (env *testEnv) seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	ctx := context.Background()
	u := &models.User{
		UID:         "uid-" + username,
		Username:    username,
		DisplayName: username,
		ThemePreset: models.ThemeVintage,
		CreatedAt:   env.clock.Now(),
	}
	require.NoError(t, env.mem.ReserveUsername(ctx, username, u.UID))
	require.NoError(t, env.mem.CreateUser(ctx, u))
	return u
}

// befriend runs the full request/accept flow between a and b.
func (env *testEnv) befriend(t *testing.T, a, b *models.User) {
	t.Helper()
	ctx := context.Background()
	req, err := env.friends.SendRequest(ctx, a.UID, b.Username)
	require.NoError(t, err)
	_, err = env.friends.Respond(ctx, b.UID, req.ID, models.FriendRequestAccepted)
	require.NoError(t, err)
}

func (env *testEnv) newEntry(t *testing.T, author *models.User, title string, vis models.Visibility) *models.JournalEntry {
	t.Helper()
	e, err := env.journal.CreateEntry(context.Background(), author.UID, EntryInput{
		Title:      title,
		Body:       "body of " + title,
		Visibility: vis,
	})
	require.NoError(t, err)
	return e
}
