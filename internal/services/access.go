package services

import (
	"context"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
)

// FriendChecker reports whether owner has an edge pointing to other.
type FriendChecker interface {
	IsFriend(ctx context.Context, owner, other string) (bool, error)
}

// FriendCheckFunc adapts a plain function to FriendChecker.
type FriendCheckFunc func(ctx context.Context, owner, other string) (bool, error)

func (f FriendCheckFunc) IsFriend(ctx context.Context, owner, other string) (bool, error) {
	return f(ctx, owner, other)
}

// CanView decides whether viewer may read entry. viewer is the caller's uid,
// or "" for an anonymous request. A failed friendship lookup denies access.
func CanView(ctx context.Context, viewer string, entry *models.JournalEntry, friends FriendChecker) bool {
	if entry == nil {
		return false
	}
	if entry.Visibility == models.VisibilityPublic {
		return true
	}
	if viewer == "" {
		return false
	}
	if viewer == entry.AuthorUID {
		return true
	}
	if entry.Visibility != models.VisibilityFriends {
		return false
	}
	ok, err := friends.IsFriend(ctx, viewer, entry.AuthorUID)
	return err == nil && ok
}

// VisibilitySet is the set of tiers a viewer may read on one owner's page.
type VisibilitySet map[models.Visibility]bool

func (s VisibilitySet) Contains(v models.Visibility) bool {
	return s[v]
}

// AllowedVisibilities computes, once per page, which tiers of owner's entries
// viewer may read. Filtering with the result matches CanView entry by entry.
func AllowedVisibilities(ctx context.Context, viewer, owner string, friends FriendChecker) VisibilitySet {
	set := VisibilitySet{models.VisibilityPublic: true}
	if viewer == "" {
		return set
	}
	if viewer == owner {
		set[models.VisibilityFriends] = true
		set[models.VisibilityPrivate] = true
		return set
	}
	if ok, err := friends.IsFriend(ctx, viewer, owner); err == nil && ok {
		set[models.VisibilityFriends] = true
	}
	return set
}

// FilterEntries keeps the entries whose tier is in allowed, preserving order.
func FilterEntries(entries []models.JournalEntry, allowed VisibilitySet) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if allowed.Contains(e.Visibility) {
			out = append(out, e)
		}
	}
	return out
}
