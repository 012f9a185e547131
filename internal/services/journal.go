package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxEntryBodyLength   = 50000
	MaxTags              = 20
)

// EntryInput is what a new journal entry is created from.
type EntryInput struct {
	ArchiveID  string
	Title      string
	Body       string
	Tags       []string
	Visibility models.Visibility
}

// JournalService owns archives, entries and comments. Every read of an entry
// goes through CanView; list reads use the page-scoped AllowedVisibilities.
type JournalService struct {
	journal store.JournalStore
	users   *UserService
	friends FriendChecker
	log     *zap.Logger
	now     func() time.Time
}

func NewJournalService(journal store.JournalStore, users *UserService, friends FriendChecker, log *zap.Logger) *JournalService {
	return &JournalService{journal: journal, users: users, friends: friends, log: log, now: time.Now}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &utils.ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &utils.ValidationError{Field: "title", Message: "Title must be at most 200 characters"}
	}
	return nil
}

// Archives

func (s *JournalService) CreateArchive(ctx context.Context, caller, title, description string) (*models.Archive, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, &utils.ValidationError{Field: "description", Message: "Description must be at most 1000 characters"}
	}

	owner, err := s.users.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &models.Archive{
		ID:          uuid.NewString(),
		UID:         owner.UID,
		Username:    owner.Username,
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.journal.CreateArchive(ctx, a); err != nil {
		return nil, storeErr("create archive", err)
	}
	return a, nil
}

func (s *JournalService) ListArchives(ctx context.Context, uid string) ([]models.Archive, error) {
	archives, err := s.journal.ListArchivesByUser(ctx, uid)
	if err != nil {
		return nil, storeErr("list archives", err)
	}
	return archives, nil
}

// ownArchive loads an archive and checks that caller owns it.
func (s *JournalService) ownArchive(ctx context.Context, caller, id string) (*models.Archive, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	a, err := s.journal.GetArchive(ctx, id)
	if err != nil {
		return nil, storeErr("get archive", err)
	}
	if a.UID != caller {
		return nil, ErrUnauthorized
	}
	return a, nil
}

func (s *JournalService) UpdateArchive(ctx context.Context, caller, id, title, description string) (*models.Archive, error) {
	a, err := s.ownArchive(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, &utils.ValidationError{Field: "description", Message: "Description must be at most 1000 characters"}
	}

	now := s.now().UTC()
	if err := s.journal.UpdateArchive(ctx, id, title, strings.TrimSpace(description), now); err != nil {
		return nil, storeErr("update archive", err)
	}
	a.Title = title
	a.Description = strings.TrimSpace(description)
	a.UpdatedAt = now
	return a, nil
}

// DeleteArchive removes an empty archive owned by caller.
func (s *JournalService) DeleteArchive(ctx context.Context, caller, id string) error {
	if _, err := s.ownArchive(ctx, caller, id); err != nil {
		return err
	}
	entries, err := s.journal.ListEntriesByArchive(ctx, id)
	if err != nil {
		return storeErr("list archive entries", err)
	}
	if len(entries) > 0 {
		return ErrArchiveNotEmpty
	}
	if err := s.journal.DeleteArchive(ctx, id); err != nil {
		return storeErr("delete archive", err)
	}
	return nil
}

// ArchiveView returns the archive and the entries in it that viewer may read.
// The archive itself carries no access rules.
func (s *JournalService) ArchiveView(ctx context.Context, viewer, id string) (*models.Archive, []models.JournalEntry, error) {
	a, err := s.journal.GetArchive(ctx, id)
	if err != nil {
		return nil, nil, storeErr("get archive", err)
	}
	entries, err := s.journal.ListEntriesByArchive(ctx, id)
	if err != nil {
		return nil, nil, storeErr("list archive entries", err)
	}
	allowed := AllowedVisibilities(ctx, viewer, a.UID, s.friends)
	return a, FilterEntries(entries, allowed), nil
}

// Entries

func (s *JournalService) CreateEntry(ctx context.Context, caller string, in EntryInput) (*models.JournalEntry, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.Body) > MaxEntryBodyLength {
		return nil, &utils.ValidationError{Field: "body", Message: "Entry is too long"}
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPrivate
	}
	if !in.Visibility.Valid() {
		return nil, &utils.ValidationError{Field: "visibility", Message: "Visibility must be private, friends or public"}
	}
	tags := utils.CleanTags(in.Tags)
	if len(tags) > MaxTags {
		return nil, &utils.ValidationError{Field: "tags", Message: "At most 20 tags are allowed"}
	}

	if in.ArchiveID != "" {
		if _, err := s.ownArchive(ctx, caller, in.ArchiveID); err != nil {
			return nil, err
		}
	}
	author, err := s.users.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &models.JournalEntry{
		ID:             uuid.NewString(),
		ArchiveID:      in.ArchiveID,
		AuthorUID:      author.UID,
		AuthorUsername: author.Username,
		Title:          in.Title,
		Body:           in.Body,
		Tags:           tags,
		Visibility:     in.Visibility,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.journal.CreateEntry(ctx, e); err != nil {
		return nil, storeErr("create entry", err)
	}

	if e.ArchiveID != "" {
		if err := s.journal.TouchArchive(ctx, e.ArchiveID, now); err != nil {
			s.log.Warn("touch archive failed", zap.String("archive_id", e.ArchiveID), zap.Error(err))
		}
	}
	return e, nil
}

// GetEntry returns the entry if viewer may read it. A hidden entry is
// reported as ErrNotFound so its existence does not leak.
func (s *JournalService) GetEntry(ctx context.Context, viewer, id string) (*models.JournalEntry, error) {
	e, err := s.journal.GetEntry(ctx, id)
	if err != nil {
		return nil, storeErr("get entry", err)
	}
	if !CanView(ctx, viewer, e, s.friends) {
		return nil, ErrNotFound
	}
	return e, nil
}

// ownEntry loads an entry for mutation by its author. Non-authors who can see
// the entry get ErrUnauthorized; others get ErrNotFound.
func (s *JournalService) ownEntry(ctx context.Context, caller, id string) (*models.JournalEntry, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	e, err := s.GetEntry(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if e.AuthorUID != caller {
		return nil, ErrUnauthorized
	}
	return e, nil
}

func (s *JournalService) UpdateEntry(ctx context.Context, caller, id string, upd models.EntryUpdate) (*models.JournalEntry, error) {
	if _, err := s.ownEntry(ctx, caller, id); err != nil {
		return nil, err
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if err := validateTitle(t); err != nil {
			return nil, err
		}
		upd.Title = &t
	}
	if upd.Body != nil && utf8.RuneCountInString(*upd.Body) > MaxEntryBodyLength {
		return nil, &utils.ValidationError{Field: "body", Message: "Entry is too long"}
	}
	if upd.Visibility != nil && !upd.Visibility.Valid() {
		return nil, &utils.ValidationError{Field: "visibility", Message: "Visibility must be private, friends or public"}
	}
	if upd.SetTags {
		upd.Tags = utils.CleanTags(upd.Tags)
		if len(upd.Tags) > MaxTags {
			return nil, &utils.ValidationError{Field: "tags", Message: "At most 20 tags are allowed"}
		}
	}

	if err := s.journal.UpdateEntry(ctx, id, upd, s.now().UTC()); err != nil {
		return nil, storeErr("update entry", err)
	}
	return s.GetEntry(ctx, caller, id)
}

// DeleteEntry removes an entry and its comments.
func (s *JournalService) DeleteEntry(ctx context.Context, caller, id string) error {
	if _, err := s.ownEntry(ctx, caller, id); err != nil {
		return err
	}
	if err := s.journal.DeleteEntry(ctx, id); err != nil {
		return storeErr("delete entry", err)
	}
	// Orphaned comments are unreachable once the entry is gone.
	if err := s.journal.DeleteComments(ctx, id); err != nil {
		s.log.Warn("delete entry comments failed", zap.String("entry_id", id), zap.Error(err))
	}
	return nil
}

// ListVisibleEntries returns owner's entries that viewer may read, newest first.
func (s *JournalService) ListVisibleEntries(ctx context.Context, viewer, owner string) ([]models.JournalEntry, error) {
	entries, err := s.journal.ListEntriesByAuthor(ctx, owner)
	if err != nil {
		return nil, storeErr("list entries", err)
	}
	allowed := AllowedVisibilities(ctx, viewer, owner, s.friends)
	return FilterEntries(entries, allowed), nil
}

// ProfilePage is a user's public page as seen by one viewer.
type ProfilePage struct {
	User     *models.User          `json:"user"`
	IsFriend bool                  `json:"is_friend"`
	IsSelf   bool                  `json:"is_self"`
	Entries  []models.JournalEntry `json:"entries"`
}

// Profile builds the page for usernameOrUID as seen by viewer.
func (s *JournalService) Profile(ctx context.Context, viewer, usernameOrUID string) (*ProfilePage, error) {
	u, err := s.users.ResolveUser(ctx, usernameOrUID)
	if err != nil {
		return nil, err
	}
	page := &ProfilePage{User: u, IsSelf: viewer != "" && viewer == u.UID}
	if viewer != "" && !page.IsSelf {
		ok, err := s.friends.IsFriend(ctx, viewer, u.UID)
		if err != nil {
			s.log.Warn("friend lookup failed", zap.String("viewer", viewer), zap.String("owner", u.UID), zap.Error(err))
		}
		page.IsFriend = err == nil && ok
	}
	page.Entries, err = s.ListVisibleEntries(ctx, viewer, u.UID)
	if err != nil {
		return nil, err
	}
	return page, nil
}
