package models

import (
	"errors"
	"fmt"
	"time"
)

// FriendRequestStatus is the state of a friend request.
// Valid values: "pending", "accepted", "declined".
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

func (s FriendRequestStatus) Valid() bool {
	switch s {
	case FriendRequestPending, FriendRequestAccepted, FriendRequestDeclined:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s FriendRequestStatus) Terminal() bool {
	return s == FriendRequestAccepted || s == FriendRequestDeclined
}

type FriendRequest struct {
	ID           string              `bson:"_id" json:"request_id"`
	FromUID      string              `bson:"from_uid" json:"from_uid"`
	FromUsername string              `bson:"from_username" json:"from_username"`
	ToUID        string              `bson:"to_uid" json:"to_uid"`
	ToUsername   string              `bson:"to_username" json:"to_username"`
	Status       FriendRequestStatus `bson:"status" json:"status"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}

func (r *FriendRequest) Validate() error {
	if r.ID == "" || r.FromUID == "" || r.ToUID == "" {
		return errors.New("friend request is missing id or parties")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("unknown friend request status %q", r.Status)
	}
	return nil
}

// Friend is one direction of a friendship, stored under OwnerUID.
type Friend struct {
	OwnerUID       string    `bson:"owner_uid" json:"-"`
	FriendUID      string    `bson:"friend_uid" json:"friend_uid"`
	FriendUsername string    `bson:"friend_username" json:"friend_username"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

func (f *Friend) Validate() error {
	if f.OwnerUID == "" || f.FriendUID == "" {
		return errors.New("friend edge is missing owner or friend")
	}
	return nil
}
