package handlers

type SignupRequest struct {
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required,min=8,max=128"`
	DisplayName   string `json:"display_name" validate:"max=50"`
	RecoveryEmail string `json:"recovery_email,omitempty" validate:"omitempty,email"`
}

type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CheckUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type SettingsRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=50"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ThemePreset *string `json:"theme_preset,omitempty" validate:"omitempty,oneof=vintage ocean forest sunset"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

type ArchiveRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// EntryRequest accepts tags either as a list or as a comma-separated string.
type EntryRequest struct {
	ArchiveID  string   `json:"archive_id"`
	Title      string   `json:"title" validate:"required,max=200"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	TagsRaw    string   `json:"tags_raw"`
	Visibility string   `json:"visibility" validate:"omitempty,oneof=private friends public"`
}

type EntryUpdateRequest struct {
	Title      *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Body       *string  `json:"body,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	TagsRaw    *string  `json:"tags_raw,omitempty"`
	Visibility *string  `json:"visibility,omitempty" validate:"omitempty,oneof=private friends public"`
}

type CommentRequest struct {
	Type string `json:"type" validate:"omitempty,oneof=comment question"`
	Body string `json:"body" validate:"required,max=2000"`
}

type FriendRequestRequest struct {
	Username string `json:"username" validate:"required"`
}

type RespondRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted declined"`
}

type ThreadRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
	Title      string `json:"title" validate:"required,max=200"`
	Body       string `json:"body" validate:"required,max=10000"`
}

type ReplyRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}
