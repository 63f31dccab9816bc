package models

import (
	"time"
)

// Message is one piece of sent media. DeletedAt is an explicit nullable
// column rather than gorm's soft delete: the cleanup sweep queries it with
// age cutoffs and the read lifecycle stamps it, so it must stay visible to
// ordinary queries.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SenderID uint `gorm:"not null;index" json:"sender_id"`
	Sender   User `gorm:"foreignKey:SenderID" json:"sender"`

	FileURL   string `gorm:"type:text;not null" json:"file_url"`
	FileKey   string `gorm:"not null" json:"file_key"`
	MimeType  string `gorm:"type:varchar(64);not null" json:"mime_type"`
	Thumbhash string `gorm:"type:text" json:"thumbhash"`

	DeletedAt *time.Time `gorm:"index" json:"-"`

	Deliveries []MessageDelivery `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Message) IsSoftDeleted() bool {
	return m.DeletedAt != nil
}

// MessageDelivery is one recipient's copy of a message. ReadAt flips exactly
// once; the message soft-deletes when no sibling delivery remains unread.
type MessageDelivery struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	MessageID   uint    `gorm:"not null;index" json:"message_id"`
	Message     Message `gorm:"foreignKey:MessageID" json:"-"`
	RecipientID uint    `gorm:"not null;index" json:"recipient_id"`

	ReadAt *time.Time `json:"read_at"`
}

func (d *MessageDelivery) IsRead() bool {
	return d.ReadAt != nil
}

// InboxItemResponse is what a recipient sees for one pending delivery.
type InboxItemResponse struct {
	DeliveryID uint         `json:"delivery_id"`
	MessageID  uint         `json:"message_id"`
	Sender     UserResponse `json:"sender"`
	FileURL    string       `json:"file_url"`
	MimeType   string       `json:"mime_type"`
	Thumbhash  string       `json:"thumbhash"`
	CreatedAt  time.Time    `json:"created_at"`
}

// DeliveryStateResponse reports per-recipient read state in the outbox.
type DeliveryStateResponse struct {
	DeliveryID  uint       `json:"delivery_id"`
	RecipientID uint       `json:"recipient_id"`
	ReadAt      *time.Time `json:"read_at"`
}

// OutboxItemResponse is the sender-side view of a message and its deliveries.
type OutboxItemResponse struct {
	MessageID  uint                    `json:"message_id"`
	FileURL    string                  `json:"file_url"`
	MimeType   string                  `json:"mime_type"`
	Thumbhash  string                  `json:"thumbhash"`
	CreatedAt  time.Time               `json:"created_at"`
	Deliveries []DeliveryStateResponse `json:"deliveries"`
}

func (m *Message) ToOutboxItem() OutboxItemResponse {
	deliveries := make([]DeliveryStateResponse, len(m.Deliveries))
	for i, d := range m.Deliveries {
		deliveries[i] = DeliveryStateResponse{
			DeliveryID:  d.ID,
			RecipientID: d.RecipientID,
			ReadAt:      d.ReadAt,
		}
	}
	return OutboxItemResponse{
		MessageID:  m.ID,
		FileURL:    m.FileURL,
		MimeType:   m.MimeType,
		Thumbhash:  m.Thumbhash,
		CreatedAt:  m.CreatedAt,
		Deliveries: deliveries,
	}
}

func (d *MessageDelivery) ToInboxItem() InboxItemResponse {
	return InboxItemResponse{
		DeliveryID: d.ID,
		MessageID:  d.MessageID,
		Sender:     d.Message.Sender.ToResponse(),
		FileURL:    d.Message.FileURL,
		MimeType:   d.Message.MimeType,
		Thumbhash:  d.Message.Thumbhash,
		CreatedAt:  d.Message.CreatedAt,
	}
}
