package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
)

func (s *Store) CreateFriendRequest(_ context.Context, r *models.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateFriendRequest"); err != nil {
		return err
	}
	s.requests[r.ID] = *r
	return nil
}

func (s *Store) GetFriendRequest(_ context.Context, id string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetFriendRequest"); err != nil {
		return nil, err
	}
	r, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := store.CheckRecord("friend_requests", id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpdateFriendRequestStatus(_ context.Context, id string, from, to models.FriendRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateFriendRequestStatus"); err != nil {
		return err
	}
	r, ok := s.requests[id]
	if !ok {
		return store.ErrNotFound
	}
	if r.Status != from {
		return store.ErrConflict
	}
	r.Status = to
	s.requests[id] = r
	return nil
}

func (s *Store) ListPendingRequests(_ context.Context, toUID string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListPendingRequests"); err != nil {
		return nil, err
	}
	out := make([]models.FriendRequest, 0)
	for id, r := range s.requests {
		if r.ToUID == toUID && r.Status == models.FriendRequestPending {
			if err := store.CheckRecord("friend_requests", id, &r); err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	sortByTime(out, func(r models.FriendRequest) time.Time { return r.CreatedAt }, true)
	return out, nil
}

func (s *Store) ListRequestsBetween(_ context.Context, a, b string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListRequestsBetween"); err != nil {
		return nil, err
	}
	out := make([]models.FriendRequest, 0)
	for id, r := range s.requests {
		if (r.FromUID == a && r.ToUID == b) || (r.FromUID == b && r.ToUID == a) {
			if err := store.CheckRecord("friend_requests", id, &r); err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	sortByTime(out, func(r models.FriendRequest) time.Time { return r.CreatedAt }, false)
	return out, nil
}

func (s *Store) ReadFriendEdge(_ context.Context, ownerUID, otherUID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ReadFriendEdge"); err != nil {
		return false, err
	}
	_, ok := s.friends[ownerUID][otherUID]
	return ok, nil
}

func (s *Store) WriteFriendEdge(_ context.Context, f *models.Friend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("WriteFriendEdge"); err != nil {
		return err
	}
	list, ok := s.friends[f.OwnerUID]
	if !ok {
		list = make(map[string]models.Friend)
		s.friends[f.OwnerUID] = list
	}
	list[f.FriendUID] = *f
	return nil
}

func (s *Store) DeleteFriendEdge(_ context.Context, ownerUID, otherUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteFriendEdge"); err != nil {
		return err
	}
	delete(s.friends[ownerUID], otherUID)
	return nil
}

func (s *Store) ListFriends(_ context.Context, ownerUID string) ([]models.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListFriends"); err != nil {
		return nil, err
	}
	out := make([]models.Friend, 0, len(s.friends[ownerUID]))
	for id, f := range s.friends[ownerUID] {
		if err := store.CheckRecord("friends", ownerUID+":"+id, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FriendUsername < out[j].FriendUsername })
	return out, nil
}
