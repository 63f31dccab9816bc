package repository

import (
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateWithDeliveries inserts one message row and one delivery per
// recipient inside a single transaction, so a reader can never observe a
// partial fan-out.
func (r *MessageRepository) CreateWithDeliveries(message *models.Message, recipientIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		deliveries := make([]models.MessageDelivery, len(recipientIDs))
		for i, recipientID := range recipientIDs {
			deliveries[i] = models.MessageDelivery{
				MessageID:   message.ID,
				RecipientID: recipientID,
			}
		}
		return tx.Create(&deliveries).Error
	})
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindDeliveryByID(id uint) (*models.MessageDelivery, error) {
	var delivery models.MessageDelivery
	err := r.db.First(&delivery, id).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// ListInbox returns a recipient's unread deliveries for non-deleted
// messages, newest first.
func (r *MessageRepository) ListInbox(userID uint, limit int) ([]models.MessageDelivery, error) {
	var deliveries []models.MessageDelivery
	err := r.db.Preload("Message.Sender").
		Joins("JOIN messages ON messages.id = message_deliveries.message_id").
		Where("message_deliveries.recipient_id = ? AND message_deliveries.read_at IS NULL AND messages.deleted_at IS NULL", userID).
		Order("message_deliveries.created_at DESC").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}

func (r *MessageRepository) ListOutbox(senderID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Deliveries").
		Where("sender_id = ? AND deleted_at IS NULL", senderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) CountUnreadForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.MessageDelivery{}).
		Joins("JOIN messages ON messages.id = message_deliveries.message_id").
		Where("message_deliveries.recipient_id = ? AND message_deliveries.read_at IS NULL AND messages.deleted_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkDeliveryRead stamps read_at in one conditional update. The ownership
// and already-read checks live in the WHERE clause, so a foreign or repeated
// call changes nothing and reports false.
func (r *MessageRepository) MarkDeliveryRead(deliveryID, recipientID uint, at time.Time) (bool, error) {
	res := r.db.Model(&models.MessageDelivery{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", deliveryID, recipientID).
		Update("read_at", at)
	return res.RowsAffected > 0, res.Error
}

// HasDelivery reports whether the user was a recipient of the message.
func (r *MessageRepository) HasDelivery(messageID, recipientID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.MessageDelivery{}).
		Where("message_id = ? AND recipient_id = ?", messageID, recipientID).
		Count(&count).Error
	return count > 0, err
}

// CountUnreadForMessage is always recomputed from the table, never cached,
// so concurrent markRead calls from different recipients cannot lose the
// all-read transition.
func (r *MessageRepository) CountUnreadForMessage(messageID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.MessageDelivery{}).
		Where("message_id = ? AND read_at IS NULL", messageID).
		Count(&count).Error
	return count, err
}

// SoftDelete stamps deleted_at once; a second caller finds the row already
// stamped and no-ops, keeping the earliest deletion time.
func (r *MessageRepository) SoftDelete(messageID uint, at time.Time) error {
	return r.db.Model(&models.Message{}).
		Where("id = ? AND deleted_at IS NULL", messageID).
		Update("deleted_at", at).Error
}

// ListExpired returns messages due for purging: soft-deleted before the
// first cutoff, or created before the second and never soft-deleted.
func (r *MessageRepository) ListExpired(softDeletedBefore, createdBefore time.Time) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("deleted_at IS NOT NULL AND deleted_at < ?", softDeletedBefore).
		Or("deleted_at IS NULL AND created_at < ?", createdBefore).
		Find(&messages).Error
	return messages, err
}

// PurgeMessages hard-deletes deliveries before their messages to respect the
// foreign-key dependency direction.
func (r *MessageRepository) PurgeMessages(ids []uint) (int64, int64, error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}

	var deliveries, messages int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("message_id IN ?", ids).Delete(&models.MessageDelivery{})
		if res.Error != nil {
			return res.Error
		}
		deliveries = res.RowsAffected

		res = tx.Where("id IN ?", ids).Delete(&models.Message{})
		if res.Error != nil {
			return res.Error
		}
		messages = res.RowsAffected
		return nil
	})
	return deliveries, messages, err
}
