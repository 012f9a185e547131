package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store/memstore"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionService(memstore.NewKV(), auth.NewJWTManager("test-secret", time.Hour))

	token, err := sessions.Create(ctx, "uid-1")
	require.NoError(t, err)

	uid, ok := sessions.Validate(ctx, token)
	assert.True(t, ok)
	assert.Equal(t, "uid-1", uid)

	// Signing in again replaces the previous session.
	second, err := sessions.Create(ctx, "uid-1")
	require.NoError(t, err)
	_, ok = sessions.Validate(ctx, token)
	assert.False(t, ok)
	_, ok = sessions.Validate(ctx, second)
	assert.True(t, ok)

	require.NoError(t, sessions.Invalidate(ctx, second))
	_, ok = sessions.Validate(ctx, second)
	assert.False(t, ok)

	_, ok = sessions.Validate(ctx, "")
	assert.False(t, ok)
	_, ok = sessions.Validate(ctx, "not-a-jwt")
	assert.False(t, ok)
}

func TestSession_ForeignSecretRejected(t *testing.T) {
	ctx := context.Background()
	kv := memstore.NewKV()
	issuer := NewSessionService(kv, auth.NewJWTManager("secret-a", time.Hour))
	verifier := NewSessionService(kv, auth.NewJWTManager("secret-b", time.Hour))

	token, err := issuer.Create(ctx, "uid-1")
	require.NoError(t, err)
	_, ok := verifier.Validate(ctx, token)
	assert.False(t, ok)
}

func TestProfileCache(t *testing.T) {
	ctx := context.Background()
	kv := memstore.NewKV()
	cache := NewProfileCache(kv, time.Minute)

	assert.Nil(t, cache.Get(ctx, "alice"))
	u := &models.User{UID: "uid-alice", Username: "alice", ThemePreset: models.ThemeForest}
	require.NoError(t, cache.Set(ctx, u))
	got := cache.Get(ctx, "alice")
	require.NotNil(t, got)
	assert.Equal(t, *u, *got)

	require.NoError(t, kv.Set(ctx, CacheKey("profile", "bob"), `{"uid":"uid-bob","username":"bob","theme_preset":"plaid"}`, time.Minute))
	assert.Nil(t, cache.Get(ctx, "bob"))
	require.NoError(t, kv.Set(ctx, CacheKey("profile", "carol"), `{not json`, time.Minute))
	assert.Nil(t, cache.Get(ctx, "carol"))

	require.NoError(t, cache.Delete(ctx, "alice"))
	assert.Nil(t, cache.Get(ctx, "alice"))

	var off *ProfileCache
	assert.Nil(t, off.Get(ctx, "alice"))
	assert.NoError(t, off.Set(ctx, u))
	assert.NoError(t, off.Delete(ctx, "alice"))
}
