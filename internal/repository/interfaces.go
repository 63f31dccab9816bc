package repository

import (
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
	UpdatePreferences(userID uint, prefs models.NotificationPreferences) error
	SearchUsers(query string, limit int) ([]models.User, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	FindValidByHash(tokenHash string) (*models.RefreshToken, error)
	RevokeByHash(tokenHash string) error
}

// FriendRepositoryInterface defines the contract for friend request and friendship operations
type FriendRepositoryInterface interface {
	CreateRequest(request *models.FriendRequest) error
	FindRequestByID(id uint) (*models.FriendRequest, error)
	FindPendingBetween(userID1, userID2 uint) (*models.FriendRequest, error)
	ListIncomingPending(userID uint) ([]models.FriendRequest, error)
	UpdateRequestStatus(id uint, status models.FriendRequestStatus) error
	// AcceptRequest flips the request to accepted and materializes the
	// friendship row in one transaction.
	AcceptRequest(request *models.FriendRequest) error
	FriendshipExists(userID1, userID2 uint) (bool, error)
	ListFriends(userID uint) ([]models.User, error)
	ListFriendIDs(userID uint) ([]uint, error)
}

// MessageRepositoryInterface defines the contract for message and delivery operations
type MessageRepositoryInterface interface {
	// CreateWithDeliveries inserts the message and one delivery per
	// recipient as a single transaction; no partial fan-out survives.
	CreateWithDeliveries(message *models.Message, recipientIDs []uint) error
	FindByID(id uint) (*models.Message, error)
	FindDeliveryByID(id uint) (*models.MessageDelivery, error)
	ListInbox(userID uint, limit int) ([]models.MessageDelivery, error)
	ListOutbox(senderID uint, limit int) ([]models.Message, error)
	CountUnreadForUser(userID uint) (int64, error)
	// MarkDeliveryRead stamps read_at only when the delivery belongs to
	// recipientID and is still unread; reports whether a row changed.
	MarkDeliveryRead(deliveryID, recipientID uint, at time.Time) (bool, error)
	HasDelivery(messageID, recipientID uint) (bool, error)
	CountUnreadForMessage(messageID uint) (int64, error)
	SoftDelete(messageID uint, at time.Time) error
	ListExpired(softDeletedBefore, createdBefore time.Time) ([]models.Message, error)
	PurgeMessages(ids []uint) (deliveries int64, messages int64, err error)
}

// PushTokenRepositoryInterface defines the contract for push token operations
type PushTokenRepositoryInterface interface {
	Upsert(token *models.PushToken) error
	DeleteByUserAndToken(userID uint, token string) (int64, error)
	ListByUser(userID uint) ([]models.PushToken, error)
	ListForUsers(userIDs []uint) ([]models.PushToken, error)
}

// WaitlistRepositoryInterface defines the contract for waitlist operations
type WaitlistRepositoryInterface interface {
	Join(userID uint) error
	FindByUser(userID uint) (*models.WaitlistEntry, error)
	Count() (int64, error)
}
