package models

import (
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == Public || v == Private
}

// Fallbacks used when the owning user record no longer exists in the identity
// store. The video itself stays servable.
const (
	GuestName      = "Guest"
	GuestAvatarURL = "/assets/images/default-avatar.png"
)

type Video struct {
	ID           uuid.UUID  `db:"id"`
	ExternalID   string     `db:"external_id"`
	OwnerID      uuid.UUID  `db:"owner_id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	VideoURL     string     `db:"video_url"`
	ThumbnailURL string     `db:"thumbnail_url"`
	Duration     int        `db:"duration"`
	Views        int64      `db:"views"`
	Visibility   Visibility `db:"visibility"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Owner is the minimal read-only projection of the identity provider's user
// record. Email is only exposed on profile views.
type Owner struct {
	ID    uuid.UUID `db:"id"`
	Name  string    `db:"name"`
	Image string    `db:"image"`
	Email string    `db:"email"`
}

type VideoWithOwner struct {
	Video
	Owner Owner
}
