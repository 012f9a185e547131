package services

import (
	"context"
	"fmt"

	"github.com/AnshRaj112/afterthedoll-backend/pkg/auth"
	"github.com/google/uuid"
)

const (
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionService issues signed session tokens and keeps the matching server-side
// session in Redis so that sign-out revokes a token before it expires.
// One live session per user: signing in again replaces the previous one.
type SessionService struct {
	kv     KV
	tokens *auth.JWTManager
}

func NewSessionService(kv KV, tokens *auth.JWTManager) *SessionService {
	return &SessionService{kv: kv, tokens: tokens}
}

// Create starts a new session for uid and returns its token.
func (s *SessionService) Create(ctx context.Context, uid string) (string, error) {
	if err := s.InvalidateUser(ctx, uid); err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	ttl := s.tokens.Duration()

	if err := s.kv.Set(ctx, SessionKeyPrefix+sessionID, uid, ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := s.kv.Set(ctx, UserSessionKeyPrefix+uid, sessionID, ttl); err != nil {
		return "", fmt.Errorf("store user session: %w", err)
	}

	return s.tokens.Generate(uid, sessionID)
}

// Validate returns the uid behind token. ok is false for unknown, revoked or
// expired tokens, and also when Redis cannot be reached.
func (s *SessionService) Validate(ctx context.Context, token string) (uid string, ok bool) {
	if token == "" {
		return "", false
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", false
	}

	stored, err := s.kv.Get(ctx, SessionKeyPrefix+claims.ID)
	if err != nil || stored != claims.Subject {
		return "", false
	}
	return claims.Subject, true
}

// Invalidate revokes the session behind token.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}
	return s.kv.Del(ctx, SessionKeyPrefix+claims.ID, UserSessionKeyPrefix+claims.Subject)
}

// InvalidateUser revokes whatever session uid currently holds.
func (s *SessionService) InvalidateUser(ctx context.Context, uid string) error {
	userSessionKey := UserSessionKeyPrefix + uid

	if sessionID, err := s.kv.Get(ctx, userSessionKey); err == nil && sessionID != "" {
		if err := s.kv.Del(ctx, SessionKeyPrefix+sessionID); err != nil {
			return err
		}
	}
	return s.kv.Del(ctx, userSessionKey)
}
