package repository

import (
	"github.com/AugusDogus/whisp-sub001/internal/models"
	"gorm.io/gorm"
)

type PushTokenRepository struct {
	db *gorm.DB
}

func NewPushTokenRepository(db *gorm.DB) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

// Upsert registers a token, keyed on the globally unique token column. A
// token that already exists is moved to the registering user with platform
// and updated_at refreshed; no duplicate row is ever created.
func (r *PushTokenRepository) Upsert(token *models.PushToken) error {
	return r.db.Exec(`
		INSERT INTO push_tokens (user_id, token, platform, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			updated_at = NOW()
	`, token.UserID, token.Token, token.Platform).Error
}

func (r *PushTokenRepository) DeleteByUserAndToken(userID uint, token string) (int64, error) {
	res := r.db.Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.PushToken{})
	return res.RowsAffected, res.Error
}

func (r *PushTokenRepository) ListByUser(userID uint) ([]models.PushToken, error) {
	var tokens []models.PushToken
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&tokens).Error
	return tokens, err
}

func (r *PushTokenRepository) ListForUsers(userIDs []uint) ([]models.PushToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []models.PushToken
	err := r.db.Where("user_id IN ?", userIDs).Find(&tokens).Error
	return tokens, err
}
