package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinPasswordLength    = 8
	MaxDisplayNameLength = 50
	MaxBioLength         = 500
	DefaultThemePreset   = models.ThemeVintage
)

// RegisterInput is what a new account is created from.
type RegisterInput struct {
	Username    string
	Password    string
	Email       string
	DisplayName string
}

// UserService owns accounts and profiles. Credentials go to the identity
// store, the profile and the username reservation to the profile store.
type UserService struct {
	accounts store.AccountStore
	profiles store.ProfileStore
	cache    *ProfileCache
	enc      *utils.Encryptor
	log      *zap.Logger
	now      func() time.Time
}

// NewUserService wires the service. cache and enc may be nil.
func NewUserService(accounts store.AccountStore, profiles store.ProfileStore, cache *ProfileCache, enc *utils.Encryptor, log *zap.Logger) *UserService {
	return &UserService{
		accounts: accounts,
		profiles: profiles,
		cache:    cache,
		enc:      enc,
		log:      log,
		now:      time.Now,
	}
}

// Register validates input, reserves the username and creates the account and
// profile. A failure after the reservation releases it again.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := utils.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, &utils.ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}
	if utf8.RuneCountInString(in.DisplayName) > MaxDisplayNameLength {
		return nil, &utils.ValidationError{Field: "display_name", Message: "Display name must be at most 50 characters"}
	}

	username := utils.NormalizeUsername(in.Username)
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var emailEncrypted string
	if in.Email != "" && s.enc != nil {
		if emailEncrypted, err = s.enc.Encrypt(in.Email); err != nil {
			return nil, err
		}
	}

	uid := uuid.NewString()
	now := s.now().UTC()

	if err := s.profiles.ReserveUsername(ctx, username, uid); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, storeErr("reserve username", err)
	}

	acct := &models.Account{
		UID:            uid,
		Username:       username,
		PasswordHash:   hash,
		EmailEncrypted: emailEncrypted,
		CreatedAt:      now,
	}
	if err := s.accounts.CreateAccount(ctx, acct); err != nil {
		s.releaseUsername(ctx, username)
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, storeErr("create account", err)
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = username
	}
	user := &models.User{
		UID:         uid,
		Username:    username,
		DisplayName: displayName,
		ThemePreset: DefaultThemePreset,
		CreatedAt:   now,
	}
	if err := s.profiles.CreateUser(ctx, user); err != nil {
		if derr := s.accounts.DeleteAccount(ctx, uid); derr != nil {
			s.log.Error("failed to remove account after profile error", zap.String("uid", uid), zap.Error(derr))
		}
		s.releaseUsername(ctx, username)
		return nil, storeErr("create profile", err)
	}

	s.log.Info("user registered", zap.String("uid", uid), zap.String("username", username))
	return user, nil
}

func (s *UserService) releaseUsername(ctx context.Context, username string) {
	if err := s.profiles.ReleaseUsername(ctx, username); err != nil {
		s.log.Error("failed to release username reservation", zap.String("username", username), zap.Error(err))
	}
}

// Authenticate checks credentials and returns the profile.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	acct, err := s.accounts.GetAccountByUsername(ctx, utils.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("get account", err)
	}

	ok, err := utils.VerifyPassword(password, acct.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return s.GetUser(ctx, acct.UID)
}

func (s *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	u, err := s.profiles.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return u, nil
}

// ResolveUser finds a user by username, falling back to treating the input as a uid.
func (s *UserService) ResolveUser(ctx context.Context, usernameOrUID string) (*models.User, error) {
	name := utils.NormalizeUsername(usernameOrUID)
	if u := s.cache.Get(ctx, name); u != nil {
		return u, nil
	}

	uid, err := s.profiles.LookupUsername(ctx, name)
	switch {
	case err == nil:
		u, err := s.GetUser(ctx, uid)
		if err != nil {
			return nil, err
		}
		if cerr := s.cache.Set(ctx, u); cerr != nil {
			s.log.Warn("profile cache set failed", zap.String("username", u.Username), zap.Error(cerr))
		}
		return u, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, storeErr("lookup username", err)
	}

	return s.GetUser(ctx, usernameOrUID)
}

// UsernameAvailable reports whether username is valid and unclaimed.
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return false, err
	}
	_, err := s.profiles.LookupUsername(ctx, utils.NormalizeUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, storeErr("lookup username", err)
	}
	return false, nil
}

// UpdateProfile applies settings changes for caller. The username never changes.
func (s *UserService) UpdateProfile(ctx context.Context, caller string, upd models.ProfileUpdate) (*models.User, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	if upd.ThemePreset != nil && !upd.ThemePreset.Valid() {
		return nil, &utils.ValidationError{Field: "theme_preset", Message: "Unknown theme preset"}
	}
	if upd.DisplayName != nil && utf8.RuneCountInString(*upd.DisplayName) > MaxDisplayNameLength {
		return nil, &utils.ValidationError{Field: "display_name", Message: "Display name must be at most 50 characters"}
	}
	if upd.Bio != nil && utf8.RuneCountInString(*upd.Bio) > MaxBioLength {
		return nil, &utils.ValidationError{Field: "bio", Message: "Bio must be at most 500 characters"}
	}

	if err := s.profiles.UpdateUser(ctx, caller, upd); err != nil {
		return nil, storeErr("update user", err)
	}
	u, err := s.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, u.Username); err != nil {
		s.log.Warn("profile cache invalidation failed", zap.String("username", u.Username), zap.Error(err))
	}
	return u, nil
}
