package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`

	Avatar            string     `json:"avatar"`
	AvatarKey         string     `json:"-"`
	AvatarContentType string     `json:"-"`
	AvatarSizeBytes   int64      `json:"-"`
	AvatarETag        string     `json:"-"`
	AvatarUpdatedAt   *time.Time `json:"-"`

	// Notification preferences. Both default to on; push sends check these
	// before touching the Expo API.
	NotifyMessages       bool `gorm:"not null;default:true" json:"notify_messages"`
	NotifyFriendRequests bool `gorm:"not null;default:true" json:"notify_friend_requests"`

	Messages []Message `gorm:"foreignKey:SenderID" json:"-"`
}

type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		CreatedAt:   u.CreatedAt,
	}
}

// NotificationPreferences is the typed payload for the preferences endpoints.
type NotificationPreferences struct {
	NotifyMessages       bool `json:"notify_messages"`
	NotifyFriendRequests bool `json:"notify_friend_requests"`
}

func (u *User) Preferences() NotificationPreferences {
	return NotificationPreferences{
		NotifyMessages:       u.NotifyMessages,
		NotifyFriendRequests: u.NotifyFriendRequests,
	}
}
