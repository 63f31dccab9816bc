package repository

import (
	"github.com/AugusDogus/whisp-sub001/internal/models"
	"gorm.io/gorm"
)

type WaitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// Join creates at most one entry per user; a repeat join is a no-op.
func (r *WaitlistRepository) Join(userID uint) error {
	return r.db.Exec(`
		INSERT INTO waitlist_entries (user_id, created_at)
		VALUES (?, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`, userID).Error
}

func (r *WaitlistRepository) FindByUser(userID uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.Where("user_id = ?", userID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *WaitlistRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.WaitlistEntry{}).Count(&count).Error
	return count, err
}
