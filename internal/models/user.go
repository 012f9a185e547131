package models

import (
	"errors"
	"time"
)

// ThemePreset is the colour scheme a user picked for their pages.
type ThemePreset string

const (
	ThemeVintage ThemePreset = "vintage"
	ThemeOcean   ThemePreset = "ocean"
	ThemeForest  ThemePreset = "forest"
	ThemeSunset  ThemePreset = "sunset"
)

// Valid reports whether t is one of the known presets.
func (t ThemePreset) Valid() bool {
	switch t {
	case ThemeVintage, ThemeOcean, ThemeForest, ThemeSunset:
		return true
	}
	return false
}

// User is the public profile record. Credentials live in Account.
type User struct {
	UID         string      `bson:"_id" json:"uid"`
	Username    string      `bson:"username" json:"username"`
	DisplayName string      `bson:"display_name" json:"display_name"`
	Bio         string      `bson:"bio" json:"bio"`
	AvatarURL   string      `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	ThemePreset ThemePreset `bson:"theme_preset" json:"theme_preset"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
}

func (u *User) Validate() error {
	if u.UID == "" {
		return errors.New("missing uid")
	}
	if u.Username == "" {
		return errors.New("missing username")
	}
	if !u.ThemePreset.Valid() {
		return errors.New("unknown theme preset " + string(u.ThemePreset))
	}
	return nil
}

// Account holds sign-in credentials for a user (identity store, internal only).
type Account struct {
	UID            string    `db:"id" json:"-"`
	Username       string    `db:"username" json:"-"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	EmailEncrypted string    `db:"email_encrypted" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	ThemePreset *ThemePreset
	AvatarURL   *string
}
