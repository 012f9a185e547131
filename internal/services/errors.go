package services

import (
	"errors"
	"fmt"

	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrArchiveNotEmpty    = errors.New("archive still has entries")
	// ErrAsymmetricFriendship flags a friendship recorded in only one direction.
	ErrAsymmetricFriendship = errors.New("friend edges disagree")
)

// storeErr maps a collaborator failure onto the service taxonomy. Missing
// records become ErrNotFound; everything else is ErrStoreUnavailable with the
// cause kept in the chain.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
