package models

import (
	"time"

	"gorm.io/gorm"
)

type FriendRequestStatus string

const (
	RequestPending   FriendRequestStatus = "pending"
	RequestAccepted  FriendRequestStatus = "accepted"
	RequestDeclined  FriendRequestStatus = "declined"
	RequestCancelled FriendRequestStatus = "cancelled"
)

// FriendRequest records an invitation between two users. Rows are never
// physically deleted; resolution is tracked through Status.
type FriendRequest struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FromUserID uint `gorm:"not null;index:idx_request_pair" json:"from_user_id"`
	FromUser   User `gorm:"foreignKey:FromUserID" json:"-"`
	ToUserID   uint `gorm:"not null;index:idx_request_pair" json:"to_user_id"`
	ToUser     User `gorm:"foreignKey:ToUserID" json:"-"`

	Status FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
}

type FriendRequestResponse struct {
	ID        uint                `json:"id"`
	From      UserResponse        `json:"from"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

func (fr *FriendRequest) ToResponse() FriendRequestResponse {
	return FriendRequestResponse{
		ID:        fr.ID,
		From:      fr.FromUser.ToResponse(),
		Status:    fr.Status,
		CreatedAt: fr.CreatedAt,
	}
}

// Friendship is a confirmed relation. The pair is stored normalized with
// UserIDA < UserIDB so either side can query it without duplicate rows.
type Friendship struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserIDA uint `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"user_id_a"`
	UserIDB uint `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"user_id_b"`
}

// BeforeCreate enforces the UserIDA < UserIDB ordering regardless of which
// side initiated the request.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	if f.UserIDA > f.UserIDB {
		f.UserIDA, f.UserIDB = f.UserIDB, f.UserIDA
	}
	return nil
}

// FriendResponse annotates a user with relationship state so clients can
// render the right call-to-action without guessing at fields.
type FriendResponse struct {
	User              UserResponse `json:"user"`
	IsFriend          bool         `json:"is_friend"`
	HasPendingRequest bool         `json:"has_pending_request"`
}
