package repository

import (
	"github.com/AugusDogus/whisp-sub001/internal/models"
	"gorm.io/gorm"
)

type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

func (r *FriendRepository) CreateRequest(request *models.FriendRequest) error {
	return r.db.Create(request).Error
}

func (r *FriendRepository) FindRequestByID(id uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.Preload("FromUser").First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindPendingBetween looks for a pending request in either direction.
func (r *FriendRepository) FindPendingBetween(userID1, userID2 uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.Where(
		"status = ? AND ((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))",
		models.RequestPending, userID1, userID2, userID2, userID1,
	).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *FriendRepository) ListIncomingPending(userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.Preload("FromUser").
		Where("to_user_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *FriendRepository) UpdateRequestStatus(id uint, status models.FriendRequestStatus) error {
	return r.db.Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Update("status", status).Error
}

// AcceptRequest flips the request to accepted and inserts the normalized
// friendship row in one transaction. An already-existing friendship is left
// alone; the pair must never be duplicated.
func (r *FriendRepository) AcceptRequest(request *models.FriendRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Update("status", models.RequestAccepted).Error; err != nil {
			return err
		}

		a, b := request.FromUserID, request.ToUserID
		if a > b {
			a, b = b, a
		}
		friendship := models.Friendship{UserIDA: a, UserIDB: b}
		return tx.Where("user_id_a = ? AND user_id_b = ?", a, b).
			FirstOrCreate(&friendship).Error
	})
}

func (r *FriendRepository) FriendshipExists(userID1, userID2 uint) (bool, error) {
	a, b := userID1, userID2
	if a > b {
		a, b = b, a
	}
	var count int64
	err := r.db.Model(&models.Friendship{}).
		Where("user_id_a = ? AND user_id_b = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

func (r *FriendRepository) ListFriends(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN friendships ON (friendships.user_id_a = users.id AND friendships.user_id_b = ?) OR (friendships.user_id_b = users.id AND friendships.user_id_a = ?)", userID, userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

func (r *FriendRepository) ListFriendIDs(userID uint) ([]uint, error) {
	var friendships []models.Friendship
	err := r.db.Where("user_id_a = ? OR user_id_b = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(friendships))
	for _, f := range friendships {
		if f.UserIDA == userID {
			ids = append(ids, f.UserIDB)
		} else {
			ids = append(ids, f.UserIDA)
		}
	}
	return ids, nil
}
