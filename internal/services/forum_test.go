package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedForum(t *testing.T, env *testEnv) {
	t.Helper()
	_, err := SeedCategories(context.Background(), env.mem, nil)
	require.NoError(t, err)
}

func TestCreateThread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedForum(t, env)
	alice := env.seedUser(t, "alice")

	th, err := env.forum.CreateThread(ctx, alice.UID, "journaling", "Morning pages", "Anyone else?")
	require.NoError(t, err)
	assert.Equal(t, th.CreatedAt, th.LastReplyAt)
	assert.Equal(t, "alice", th.AuthorUsername)

	_, err = env.forum.CreateThread(ctx, alice.UID, "no-such-category", "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.forum.CreateThread(ctx, "", "journaling", "x", "y")
	assert.ErrorIs(t, err, ErrUnauthorized)

	cat, threads, err := env.forum.ListThreads(ctx, "journaling")
	require.NoError(t, err)
	assert.Equal(t, "Journaling", cat.Name)
	assert.Len(t, threads, 1)
}

func TestReply_UpdatesLastReply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedForum(t, env)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	th, err := env.forum.CreateThread(ctx, alice.UID, "support", "Rough week", "...")
	require.NoError(t, err)
	reply, err := env.forum.Reply(ctx, bob.UID, th.ID, "Here for you")
	require.NoError(t, err)

	got, replies, err := env.forum.GetThread(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, reply.CreatedAt, got.LastReplyAt)
	if assert.Len(t, replies, 1) {
		assert.Equal(t, "bob", replies[0].AuthorUsername)
	}

	_, err = env.forum.Reply(ctx, bob.UID, "missing", "hello?")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReply_Modes(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t1 := created.Add(time.Hour)
	skewed := t1.Add(-30 * time.Minute)

	tests := []struct {
		name      string
		monotonic bool
		want      time.Time
	}{
		{"literal moves backwards", false, skewed},
		{"monotonic keeps maximum", true, t1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			env.forum.monotonic = tt.monotonic
			require.NoError(t, env.mem.UpsertCategory(ctx, &models.ForumCategory{ID: "c", Name: "C"}))
			require.NoError(t, env.mem.CreateThread(ctx, &models.ForumThread{
				ID: "t", CategoryID: "c", Title: "T", CreatedAt: created, LastReplyAt: created,
			}))

			require.NoError(t, env.forum.CreateReply(ctx, "t", &models.ForumReply{Body: "first", CreatedAt: t1}))
			require.NoError(t, env.forum.CreateReply(ctx, "t", &models.ForumReply{Body: "late", CreatedAt: skewed}))

			th, err := env.mem.GetThread(ctx, "t")
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(th.LastReplyAt), "got %s", th.LastReplyAt)

			replies, err := env.mem.ListReplies(ctx, "t")
			require.NoError(t, err)
			assert.Len(t, replies, 2)
		})
	}
}

func TestCreateReply_CounterFailureKeepsReply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, env.mem.UpsertCategory(ctx, &models.ForumCategory{ID: "c", Name: "C"}))
	require.NoError(t, env.mem.CreateThread(ctx, &models.ForumThread{ID: "t", CategoryID: "c", CreatedAt: created, LastReplyAt: created}))

	failures := testutil.ToFloat64(lastReplyFailures.WithLabelValues("monotonic"))
	env.mem.FailOn("AdvanceThreadLastReply", errDown)
	err := env.forum.CreateReply(ctx, "t", &models.ForumReply{Body: "hi", CreatedAt: created.Add(time.Minute)})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, failures+1, testutil.ToFloat64(lastReplyFailures.WithLabelValues("monotonic")))

	replies, err := env.mem.ListReplies(ctx, "t")
	require.NoError(t, err)
	assert.Len(t, replies, 1)
}

func TestListThreads_OrderedByLastReply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedForum(t, env)
	alice := env.seedUser(t, "alice")

	older, err := env.forum.CreateThread(ctx, alice.UID, "creative", "Older", "a")
	require.NoError(t, err)
	newer, err := env.forum.CreateThread(ctx, alice.UID, "creative", "Newer", "b")
	require.NoError(t, err)

	_, threads, err := env.forum.ListThreads(ctx, "creative")
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, newer.ID, threads[0].ID)

	_, err = env.forum.Reply(ctx, alice.UID, older.ID, "bump")
	require.NoError(t, err)
	_, threads, err = env.forum.ListThreads(ctx, "creative")
	require.NoError(t, err)
	assert.Equal(t, older.ID, threads[0].ID)
}

func TestSeedCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := SeedCategories(ctx, env.mem, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, err = SeedCategories(ctx, env.mem, nil)
	require.NoError(t, err)

	cats, err := env.forum.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 5)
	assert.Equal(t, "introductions", cats[0].ID)
	assert.Equal(t, "site-feedback", cats[4].ID)

	custom := []byte("categories:\n  - id: only\n    name: Only\n    sort_order: 1\n")
	cs, err := ParseCategories(custom)
	require.NoError(t, err)
	assert.Equal(t, []models.ForumCategory{{ID: "only", Name: "Only", SortOrder: 1}}, cs)

	_, err = ParseCategories([]byte("categories:\n  - id: a\n    name: A\n  - id: a\n    name: B\n"))
	assert.ErrorContains(t, err, "duplicate")
	_, err = ParseCategories([]byte("categories:\n  - name: nameless-id\n"))
	assert.Error(t, err)
}
