package models

import (
	"time"
)

type PushPlatform string

const (
	PlatformIOS     PushPlatform = "ios"
	PlatformAndroid PushPlatform = "android"
	PlatformWeb     PushPlatform = "web"
)

func ValidPushPlatform(p PushPlatform) bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

// PushToken is a device's notification endpoint. The token column is
// globally unique: a token re-registered under another user moves to that
// user's device list, since a token identifies a device install and only
// the most recent login should receive its pushes.
type PushToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uint         `gorm:"not null;index" json:"user_id"`
	User     User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token    string       `gorm:"uniqueIndex;not null" json:"token"`
	Platform PushPlatform `gorm:"type:varchar(20);not null" json:"platform"`
}

type PushTokenResponse struct {
	ID        uint         `json:"id"`
	Token     string       `json:"token"`
	Platform  PushPlatform `json:"platform"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (t *PushToken) ToResponse() PushTokenResponse {
	return PushTokenResponse{
		ID:        t.ID,
		Token:     t.Token,
		Platform:  t.Platform,
		UpdatedAt: t.UpdatedAt,
	}
}
