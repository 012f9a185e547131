package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FriendshipService runs the friend request lifecycle:
// pending -> accepted | declined, both terminal. Accepting writes one friend
// edge in each direction.
type FriendshipService struct {
	friends store.FriendStore
	users   *UserService
	log     *zap.Logger
	now     func() time.Time
}

func NewFriendshipService(friends store.FriendStore, users *UserService, log *zap.Logger) *FriendshipService {
	return &FriendshipService{friends: friends, users: users, log: log, now: time.Now}
}

// SendRequest creates a pending request from `from` to the user named by
// target (username or uid). Repeated requests between the same pair are not
// deduplicated.
func (s *FriendshipService) SendRequest(ctx context.Context, from, target string) (*models.FriendRequest, error) {
	if from == "" {
		return nil, ErrUnauthorized
	}
	if target == from {
		return nil, ErrInvalidTarget
	}

	sender, err := s.users.GetUser(ctx, from)
	if err != nil {
		return nil, err
	}
	recipient, err := s.users.ResolveUser(ctx, target)
	if err != nil {
		return nil, err
	}
	if recipient.UID == sender.UID {
		return nil, ErrInvalidTarget
	}

	req := &models.FriendRequest{
		ID:           uuid.NewString(),
		FromUID:      sender.UID,
		FromUsername: sender.Username,
		ToUID:        recipient.UID,
		ToUsername:   recipient.Username,
		Status:       models.FriendRequestPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.friends.CreateFriendRequest(ctx, req); err != nil {
		return nil, storeErr("create friend request", err)
	}

	s.log.Info("friend request sent",
		zap.String("request_id", req.ID),
		zap.String("from", req.FromUID),
		zap.String("to", req.ToUID),
	)
	return req, nil
}

// rollbackTimeout bounds the compensation writes after a failed accept.
const rollbackTimeout = 5 * time.Second

// Respond moves a pending request to decision on behalf of caller, who must be
// the recipient. Any request that is no longer pending is rejected with
// ErrInvalidTransition. If an edge write fails after the status changed, the
// request goes back to pending and the edges this call wrote are removed,
// unless another accepted request between the same pair still needs them.
func (s *FriendshipService) Respond(ctx context.Context, caller, requestID string, decision models.FriendRequestStatus) (*models.FriendRequest, error) {
	if decision != models.FriendRequestAccepted && decision != models.FriendRequestDeclined {
		return nil, &utils.ValidationError{Field: "decision", Message: "Decision must be accepted or declined"}
	}

	req, err := s.friends.GetFriendRequest(ctx, requestID)
	if err != nil {
		return nil, storeErr("get friend request", err)
	}
	if req.ToUID != caller {
		return nil, ErrUnauthorized
	}
	if req.Status.Terminal() {
		return nil, fmt.Errorf("request already %s: %w", req.Status, ErrInvalidTransition)
	}

	// Edges that already exist (friends via an earlier request) are left alone on rollback.
	var existed [2]bool
	if decision == models.FriendRequestAccepted {
		if existed[0], err = s.friends.ReadFriendEdge(ctx, req.FromUID, req.ToUID); err != nil {
			return nil, storeErr("read friend edge", err)
		}
		if existed[1], err = s.friends.ReadFriendEdge(ctx, req.ToUID, req.FromUID); err != nil {
			return nil, storeErr("read friend edge", err)
		}
	}

	if err := s.friends.UpdateFriendRequestStatus(ctx, req.ID, models.FriendRequestPending, decision); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("request no longer pending: %w", ErrInvalidTransition)
		}
		return nil, storeErr("update friend request", err)
	}
	req.Status = decision

	if decision == models.FriendRequestDeclined {
		s.log.Info("friend request declined", zap.String("request_id", req.ID))
		return req, nil
	}

	edges := pairEdges(req)
	for i := range edges {
		edges[i].CreatedAt = s.now().UTC()
		if err := s.friends.WriteFriendEdge(ctx, &edges[i]); err != nil {
			s.rollbackAccept(ctx, req, edges[:i], existed[:i])
			return nil, storeErr("write friend edge", err)
		}
	}

	s.log.Info("friend request accepted",
		zap.String("request_id", req.ID),
		zap.String("from", req.FromUID),
		zap.String("to", req.ToUID),
	)
	return req, nil
}

// pairEdges returns the two directed edges an accepted request stands for,
// sender's first.
func pairEdges(req *models.FriendRequest) [2]models.Friend {
	return [2]models.Friend{
		{OwnerUID: req.FromUID, FriendUID: req.ToUID, FriendUsername: req.ToUsername},
		{OwnerUID: req.ToUID, FriendUID: req.FromUID, FriendUsername: req.FromUsername},
	}
}

// rollbackAccept undoes a half-applied accept. written holds the edges this
// call stored before the failure. The request is reset first so that a
// concurrent accept of a duplicate request never sees it as accepted. Edges
// are deleted next, then the pair is re-read and any other accepted request
// gets its edges back. Failures are logged; the caller already returns the
// original error.
func (s *FriendshipService) rollbackAccept(ctx context.Context, req *models.FriendRequest, written []models.Friend, existed []bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := s.friends.UpdateFriendRequestStatus(ctx, req.ID, models.FriendRequestAccepted, models.FriendRequestPending); err != nil {
		s.log.Error("rollback: failed to reset friend request", zap.String("request_id", req.ID), zap.Error(err))
		// The request stays accepted, so finish the friendship instead.
		if err := s.writePair(ctx, req); err != nil {
			s.log.Error("rollback: failed to complete friendship", zap.String("request_id", req.ID), zap.Error(err))
			friendAcceptRollbacks.WithLabelValues("failed").Inc()
			return
		}
		friendAcceptRollbacks.WithLabelValues("forward").Inc()
		s.log.Warn("friend request accept completed after failed reset", zap.String("request_id", req.ID))
		return
	}
	req.Status = models.FriendRequestPending

	deleted := 0
	for i, e := range written {
		if existed[i] {
			continue
		}
		if err := s.friends.DeleteFriendEdge(ctx, e.OwnerUID, e.FriendUID); err != nil {
			s.log.Error("rollback: failed to delete friend edge",
				zap.String("request_id", req.ID),
				zap.String("owner", e.OwnerUID),
				zap.String("friend", e.FriendUID),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		if err := s.restoreAccepted(ctx, req); err != nil {
			s.log.Error("rollback: failed to restore friendship", zap.String("request_id", req.ID), zap.Error(err))
			friendAcceptRollbacks.WithLabelValues("failed").Inc()
			return
		}
	}

	friendAcceptRollbacks.WithLabelValues("ok").Inc()
	s.log.Warn("friend request accept rolled back", zap.String("request_id", req.ID))
}

// restoreAccepted rewrites the edges of any other accepted request between
// the same pair. Edge writes are upserts, so rewriting live edges is harmless.
func (s *FriendshipService) restoreAccepted(ctx context.Context, req *models.FriendRequest) error {
	reqs, err := s.friends.ListRequestsBetween(ctx, req.FromUID, req.ToUID)
	if err != nil {
		return err
	}
	for i := range reqs {
		other := &reqs[i]
		if other.ID == req.ID || other.Status != models.FriendRequestAccepted {
			continue
		}
		s.log.Warn("rollback: restoring friendship of another accepted request",
			zap.String("request_id", req.ID),
			zap.String("accepted_id", other.ID),
		)
		return s.writePair(ctx, other)
	}
	return nil
}

func (s *FriendshipService) writePair(ctx context.Context, req *models.FriendRequest) error {
	edges := pairEdges(req)
	for i := range edges {
		edges[i].CreatedAt = s.now().UTC()
		if err := s.friends.WriteFriendEdge(ctx, &edges[i]); err != nil {
			return err
		}
	}
	return nil
}

// IsFriend reports whether owner's friend list contains other.
func (s *FriendshipService) IsFriend(ctx context.Context, owner, other string) (bool, error) {
	ok, err := s.friends.ReadFriendEdge(ctx, owner, other)
	if err != nil {
		return false, storeErr("read friend edge", err)
	}
	return ok, nil
}

// CheckSymmetry reads both directions and returns ErrAsymmetricFriendship when
// they disagree.
func (s *FriendshipService) CheckSymmetry(ctx context.Context, a, b string) (bool, error) {
	ab, err := s.IsFriend(ctx, a, b)
	if err != nil {
		return false, err
	}
	ba, err := s.IsFriend(ctx, b, a)
	if err != nil {
		return false, err
	}
	if ab != ba {
		asymmetricFriendships.Inc()
		s.log.Error("asymmetric friendship", zap.String("a", a), zap.String("b", b), zap.Bool("a_to_b", ab), zap.Bool("b_to_a", ba))
		return false, ErrAsymmetricFriendship
	}
	return ab, nil
}

// PendingRequests lists requests waiting on uid's answer.
func (s *FriendshipService) PendingRequests(ctx context.Context, uid string) ([]models.FriendRequest, error) {
	reqs, err := s.friends.ListPendingRequests(ctx, uid)
	if err != nil {
		return nil, storeErr("list friend requests", err)
	}
	return reqs, nil
}

func (s *FriendshipService) ListFriends(ctx context.Context, uid string) ([]models.Friend, error) {
	friends, err := s.friends.ListFriends(ctx, uid)
	if err != nil {
		return nil, storeErr("list friends", err)
	}
	return friends, nil
}
