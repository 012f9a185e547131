package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store/memstore"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errDown = errors.New("connection reset")

// flakyFriends wraps the memory store to fail one chosen edge write and to
// run code between an accept's status swap and its edge writes. Like the
// Mongo driver, it refuses work on a finished context.
type flakyFriends struct {
	*memstore.Store

	mu        sync.Mutex
	writes    int
	failWrite int    // 1-based WriteFriendEdge call that fails, 0 for none
	onFail    func() // runs when the failing write is reached
	onAccept  func() // runs once, after the first pending -> accepted swap
}

func (f *flakyFriends) UpdateFriendRequestStatus(ctx context.Context, id string, from, to models.FriendRequestStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.Store.UpdateFriendRequestStatus(ctx, id, from, to); err != nil {
		return err
	}
	var hook func()
	f.mu.Lock()
	if to == models.FriendRequestAccepted {
		hook, f.onAccept = f.onAccept, nil
	}
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (f *flakyFriends) WriteFriendEdge(ctx context.Context, e *models.Friend) error {
	f.mu.Lock()
	f.writes++
	fail := f.writes == f.failWrite
	f.mu.Unlock()
	if fail {
		if f.onFail != nil {
			f.onFail()
		}
		return errDown
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.Store.WriteFriendEdge(ctx, e)
}

func (f *flakyFriends) DeleteFriendEdge(ctx context.Context, ownerUID, otherUID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.Store.DeleteFriendEdge(ctx, ownerUID, otherUID)
}

func (f *flakyFriends) ListRequestsBetween(ctx context.Context, a, b string) ([]models.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Store.ListRequestsBetween(ctx, a, b)
}

func newFlakyFriendship(t *testing.T, env *testEnv, f *flakyFriends) *FriendshipService {
	t.Helper()
	f.Store = env.mem
	svc := NewFriendshipService(f, env.users, zaptest.NewLogger(t))
	svc.now = env.clock.Now
	return svc
}

func TestSendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	req, err := env.friends.SendRequest(ctx, alice.UID, "Bob")
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.FriendRequestPending, req.Status)
	assert.Equal(t, alice.UID, req.FromUID)
	assert.Equal(t, "alice", req.FromUsername)
	assert.Equal(t, bob.UID, req.ToUID)
	assert.Equal(t, "bob", req.ToUsername)

	stored, err := env.mem.GetFriendRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, *req, *stored)

	pending, err := env.friends.PendingRequests(ctx, bob.UID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSendRequest_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")

	_, err := env.friends.SendRequest(ctx, alice.UID, "alice")
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = env.friends.SendRequest(ctx, alice.UID, alice.UID)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = env.friends.SendRequest(ctx, alice.UID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.friends.SendRequest(ctx, "", "alice")
	assert.ErrorIs(t, err, ErrUnauthorized)

	pending, err := env.friends.PendingRequests(ctx, alice.UID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSendRequest_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	env.seedUser(t, "bob")

	env.mem.FailOn("CreateFriendRequest", errDown)
	_, err := env.friends.SendRequest(context.Background(), alice.UID, "bob")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, errDown)
}

func TestSendRequest_NoDeduplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)
	_, err = env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)

	pending, err := env.friends.PendingRequests(ctx, bob.UID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestFriendsScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	entry := env.newEntry(t, bob, "for friends", models.VisibilityFriends)

	_, err := env.journal.GetEntry(ctx, alice.UID, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)
	got, err := env.friends.Respond(ctx, bob.UID, req.ID, models.FriendRequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, got.Status)

	ok, err := env.friends.CheckSymmetry(ctx, alice.UID, bob.UID)
	require.NoError(t, err)
	assert.True(t, ok)

	seen, err := env.journal.GetEntry(ctx, alice.UID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, seen.ID)

	aliceFriends, err := env.friends.ListFriends(ctx, alice.UID)
	require.NoError(t, err)
	if assert.Len(t, aliceFriends, 1) {
		assert.Equal(t, bob.UID, aliceFriends[0].FriendUID)
		assert.Equal(t, "bob", aliceFriends[0].FriendUsername)
	}
	bobFriends, err := env.friends.ListFriends(ctx, bob.UID)
	require.NoError(t, err)
	if assert.Len(t, bobFriends, 1) {
		assert.Equal(t, alice.UID, bobFriends[0].FriendUID)
		assert.Equal(t, "alice", bobFriends[0].FriendUsername)
		assert.True(t, bobFriends[0].CreatedAt.After(aliceFriends[0].CreatedAt))
	}

	pending, err := env.friends.PendingRequests(ctx, bob.UID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRespond_Decline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)
	got, err := env.friends.Respond(ctx, bob.UID, req.ID, models.FriendRequestDeclined)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestDeclined, got.Status)

	ok, err := env.friends.CheckSymmetry(ctx, alice.UID, bob.UID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRespond_Terminal(t *testing.T) {
	for _, first := range []models.FriendRequestStatus{models.FriendRequestAccepted, models.FriendRequestDeclined} {
		for _, second := range []models.FriendRequestStatus{models.FriendRequestAccepted, models.FriendRequestDeclined} {
			t.Run(string(first)+"_then_"+string(second), func(t *testing.T) {
				env := newTestEnv(t)
				ctx := context.Background()
				alice := env.seedUser(t, "alice")
				bob := env.seedUser(t, "bob")

				req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
				require.NoError(t, err)
				_, err = env.friends.Respond(ctx, bob.UID, req.ID, first)
				require.NoError(t, err)

				_, err = env.friends.Respond(ctx, bob.UID, req.ID, second)
				assert.ErrorIs(t, err, ErrInvalidTransition)

				stored, err := env.mem.GetFriendRequest(ctx, req.ID)
				require.NoError(t, err)
				assert.Equal(t, first, stored.Status)
			})
		}
	}
}

func TestRespond_OnlyRecipient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	env.seedUser(t, "bob")
	carol := env.seedUser(t, "carol")

	req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)

	for _, caller := range []string{alice.UID, carol.UID, ""} {
		_, err = env.friends.Respond(ctx, caller, req.ID, models.FriendRequestAccepted)
		assert.ErrorIs(t, err, ErrUnauthorized, "caller %q", caller)
	}

	stored, err := env.mem.GetFriendRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestPending, stored.Status)
}

func TestRespond_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.friends.Respond(ctx, bob.UID, "missing", models.FriendRequestAccepted)
	assert.ErrorIs(t, err, ErrNotFound)

	req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)

	_, err = env.friends.Respond(ctx, bob.UID, req.ID, models.FriendRequestPending)
	var verr *utils.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRespond_ConcurrentAcceptsSucceedOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.friends.Respond(ctx, bob.UID, req.ID, models.FriendRequestAccepted)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	assert.Equal(t, 1, ok)

	friends, err := env.friends.ListFriends(ctx, alice.UID)
	require.NoError(t, err)
	assert.Len(t, friends, 1)
}

func TestRespond_EdgeFailureRollsBack(t *testing.T) {
	tests := []struct {
		name      string
		succeeded int
	}{
		{"first edge fails", 0},
		{"second edge fails", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			alice := env.seedUser(t, "alice")
			bob := env.seedUser(t, "bob")

			req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
			require.NoError(t, err)

			env.mem.FailAfter("WriteFriendEdge", tt.succeeded, errDown)
			_, err = env.friends.Respond(ctx, bob.UID, req.ID, models.FriendRequestAccepted)
			assert.ErrorIs(t, err, ErrStoreUnavailable)
			assert.ErrorIs(t, err, errDown)
			env.mem.Heal()

			ab, err := env.mem.ReadFriendEdge(ctx, alice.UID, bob.UID)
			require.NoError(t, err)
			ba, err := env.mem.ReadFriendEdge(ctx, bob.UID, alice.UID)
			require.NoError(t, err)
			assert.False(t, ab)
			assert.False(t, ba)

			stored, err := env.mem.GetFriendRequest(ctx, req.ID)
			require.NoError(t, err)
			assert.Equal(t, models.FriendRequestPending, stored.Status)

			// The request can be answered again once the store recovers.
			_, err = env.friends.Respond(ctx, bob.UID, req.ID, models.FriendRequestAccepted)
			require.NoError(t, err)
			ok, err := env.friends.CheckSymmetry(ctx, alice.UID, bob.UID)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestRespond_RollbackKeepsExistingFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")
	env.befriend(t, alice, bob)

	// A second request in the other direction, accepted while the store flakes.
	req, err := env.friends.SendRequest(ctx, bob.UID, "alice")
	require.NoError(t, err)
	rollbacks := testutil.ToFloat64(friendAcceptRollbacks.WithLabelValues("ok"))
	env.mem.FailAfter("WriteFriendEdge", 1, errDown)
	_, err = env.friends.Respond(ctx, alice.UID, req.ID, models.FriendRequestAccepted)
	require.Error(t, err)
	env.mem.Heal()
	assert.Equal(t, rollbacks+1, testutil.ToFloat64(friendAcceptRollbacks.WithLabelValues("ok")))

	ok, err := env.friends.CheckSymmetry(ctx, alice.UID, bob.UID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRespond_RollbackSparesDuplicateAccept(t *testing.T) {
	// The duplicate's accept writes edges 1 and 2; this request's writes are 3 and 4.
	tests := []struct {
		name      string
		failWrite int
	}{
		{"first edge fails", 3},
		{"second edge fails", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			alice := env.seedUser(t, "alice")
			bob := env.seedUser(t, "bob")

			first, err := env.friends.SendRequest(ctx, alice.UID, "bob")
			require.NoError(t, err)
			second, err := env.friends.SendRequest(ctx, alice.UID, "bob")
			require.NoError(t, err)

			f := &flakyFriends{failWrite: tt.failWrite}
			svc := newFlakyFriendship(t, env, f)
			f.onAccept = func() {
				_, err := svc.Respond(ctx, bob.UID, first.ID, models.FriendRequestAccepted)
				assert.NoError(t, err)
			}

			_, err = svc.Respond(ctx, bob.UID, second.ID, models.FriendRequestAccepted)
			assert.ErrorIs(t, err, ErrStoreUnavailable)
			assert.ErrorIs(t, err, errDown)

			stored, err := env.mem.GetFriendRequest(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, models.FriendRequestAccepted, stored.Status)
			stored, err = env.mem.GetFriendRequest(ctx, second.ID)
			require.NoError(t, err)
			assert.Equal(t, models.FriendRequestPending, stored.Status)

			ok, err := env.friends.CheckSymmetry(ctx, alice.UID, bob.UID)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestRespond_RollbackOutlivesCancelledRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	req, err := env.friends.SendRequest(context.Background(), alice.UID, "bob")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &flakyFriends{failWrite: 2, onFail: cancel}
	svc := newFlakyFriendship(t, env, f)

	_, err = svc.Respond(ctx, bob.UID, req.ID, models.FriendRequestAccepted)
	assert.ErrorIs(t, err, errDown)

	bg := context.Background()
	stored, err := env.mem.GetFriendRequest(bg, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestPending, stored.Status)
	ab, err := env.mem.ReadFriendEdge(bg, alice.UID, bob.UID)
	require.NoError(t, err)
	assert.False(t, ab)
	ba, err := env.mem.ReadFriendEdge(bg, bob.UID, alice.UID)
	require.NoError(t, err)
	assert.False(t, ba)
}

func TestRespond_ResetFailureCompletesFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	req, err := env.friends.SendRequest(ctx, alice.UID, "bob")
	require.NoError(t, err)

	f := &flakyFriends{failWrite: 2}
	svc := newFlakyFriendship(t, env, f)
	env.mem.FailAfter("UpdateFriendRequestStatus", 1, errDown)
	forward := testutil.ToFloat64(friendAcceptRollbacks.WithLabelValues("forward"))

	_, err = svc.Respond(ctx, bob.UID, req.ID, models.FriendRequestAccepted)
	assert.ErrorIs(t, err, errDown)
	env.mem.Heal()
	assert.Equal(t, forward+1, testutil.ToFloat64(friendAcceptRollbacks.WithLabelValues("forward")))

	stored, err := env.mem.GetFriendRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, stored.Status)
	ok, err := env.friends.CheckSymmetry(ctx, alice.UID, bob.UID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRespond_CorruptRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.seedUser(t, "bob")
	require.NoError(t, env.mem.CreateFriendRequest(ctx, &models.FriendRequest{
		ID: "r1", FromUID: "uid-alice", ToUID: bob.UID, Status: "maybe",
	}))

	_, err := env.friends.Respond(ctx, bob.UID, "r1", models.FriendRequestAccepted)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	var derr *store.DecodeError
	assert.ErrorAs(t, err, &derr)
}

func TestCheckSymmetry_DetectsOneSidedEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	require.NoError(t, env.mem.WriteFriendEdge(ctx, &models.Friend{OwnerUID: alice.UID, FriendUID: bob.UID, FriendUsername: "bob"}))

	_, err := env.friends.CheckSymmetry(ctx, alice.UID, bob.UID)
	assert.ErrorIs(t, err, ErrAsymmetricFriendship)
}

func TestIsFriend_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mem.FailOn("ReadFriendEdge", errDown)
	_, err := env.friends.IsFriend(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
