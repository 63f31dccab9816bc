package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/cache"
	"github.com/AugusDogus/whisp-sub001/internal/models"
	"github.com/AugusDogus/whisp-sub001/internal/repository"
	"github.com/AugusDogus/whisp-sub001/internal/status"
	"github.com/AugusDogus/whisp-sub001/internal/validation"
)

var (
	ErrNoRecipients     = errors.New("at least one recipient is required")
	ErrNotFriends       = errors.New("recipient is not a friend")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMissingFile      = errors.New("file url and key are required")
	ErrUnreadRemaining  = errors.New("message still has unread deliveries")
	ErrNotParticipant   = errors.New("message does not involve this user")
)

// FileStore is the slice of object storage the message lifecycle needs.
// *storage.S3Storage satisfies it.
type FileStore interface {
	DeleteObject(ctx context.Context, key string) error
}

type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	friendRepo  repository.FriendRepositoryInterface
	files       FileStore
	tracker     *status.Tracker
	inboxCache  *cache.InboxCache
	notifier    *NotificationService
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	friendRepo repository.FriendRepositoryInterface,
	files FileStore,
	tracker *status.Tracker,
	inboxCache *cache.InboxCache,
	notifier *NotificationService,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		friendRepo:  friendRepo,
		files:       files,
		tracker:     tracker,
		inboxCache:  inboxCache,
		notifier:    notifier,
	}
}

type SendInput struct {
	FileURL      string `json:"file_url"`
	FileKey      string `json:"file_key"`
	MimeType     string `json:"mime_type"`
	Thumbhash    string `json:"thumbhash"`
	RecipientIDs []uint `json:"recipient_ids"`
}

// Send fans one uploaded media item out to the recipient list: one message
// row plus one delivery per distinct recipient, all inside one transaction.
// Every recipient must be a friend of the sender; that check happens before
// any insert.
func (s *MessageService) Send(ctx context.Context, senderID uint, input SendInput) (*models.Message, error) {
	if input.FileURL == "" || input.FileKey == "" {
		return nil, ErrMissingFile
	}
	if !validation.ValidMediaType(input.MimeType) {
		return nil, ErrUnsupportedMedia
	}

	recipients := dedupIDs(input.RecipientIDs)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	for _, recipientID := range recipients {
		isFriend, err := s.friendRepo.FriendshipExists(senderID, recipientID)
		if err != nil {
			return nil, err
		}
		if !isFriend {
			return nil, ErrNotFriends
		}
	}

	message := &models.Message{
		SenderID:  senderID,
		FileURL:   input.FileURL,
		FileKey:   input.FileKey,
		MimeType:  input.MimeType,
		Thumbhash: input.Thumbhash,
	}

	if s.tracker != nil {
		for _, recipientID := range recipients {
			s.tracker.Record(senderID, recipientID, status.StateUploading)
		}
	}

	if err := s.messageRepo.CreateWithDeliveries(message, recipients); err != nil {
		if s.tracker != nil {
			for _, recipientID := range recipients {
				s.tracker.Record(senderID, recipientID, status.StateFailed)
			}
		}
		return nil, err
	}

	for _, recipientID := range recipients {
		if s.tracker != nil {
			s.tracker.Record(senderID, recipientID, status.StateSent)
		}
		_ = s.inboxCache.InvalidateInbox(recipientID)
	}

	if s.notifier != nil {
		sender, err := s.messageRepo.FindByID(message.ID)
		if err == nil {
			s.notifier.NotifyNewMessage(ctx, &sender.Sender, recipients)
			return sender, nil
		}
	}

	return s.messageRepo.FindByID(message.ID)
}

// Inbox returns the recipient's unread, non-deleted deliveries, newest
// first, served from cache when warm.
func (s *MessageService) Inbox(userID uint, limit int) ([]models.InboxItemResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if cached, ok := s.inboxCache.GetInbox(userID); ok {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	deliveries, err := s.messageRepo.ListInbox(userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.InboxItemResponse, len(deliveries))
	for i := range deliveries {
		items[i] = deliveries[i].ToInboxItem()
	}
	if len(items) > 0 {
		_ = s.inboxCache.SetInbox(userID, items)
	}
	return items, nil
}

func (s *MessageService) Outbox(senderID uint, limit int) ([]models.OutboxItemResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.messageRepo.ListOutbox(senderID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.OutboxItemResponse, len(messages))
	for i := range messages {
		items[i] = messages[i].ToOutboxItem()
	}
	return items, nil
}

func (s *MessageService) UnreadCount(userID uint) (int64, error) {
	if count, ok := s.inboxCache.GetUnreadCount(userID); ok {
		return count, nil
	}
	count, err := s.messageRepo.CountUnreadForUser(userID)
	if err != nil {
		return 0, err
	}
	_ = s.inboxCache.SetUnreadCount(userID, count)
	return count, nil
}

type MarkReadResult struct {
	Changed     bool `json:"changed"`
	SoftDeleted bool `json:"soft_deleted"`
}

// MarkRead stamps read_at on the caller's delivery. The ownership and
// already-read checks are folded into one conditional update, so a repeated
// call or a call by any other user changes nothing. When the last sibling
// delivery goes read, the message soft-deletes; "all read" is recomputed
// from the store each time rather than counted down, which keeps concurrent
// readers from losing the transition.
func (s *MessageService) MarkRead(deliveryID, userID uint) (MarkReadResult, error) {
	changed, err := s.messageRepo.MarkDeliveryRead(deliveryID, userID, time.Now().UTC())
	if err != nil {
		return MarkReadResult{}, err
	}
	if !changed {
		return MarkReadResult{}, nil
	}

	_ = s.inboxCache.InvalidateInbox(userID)

	delivery, err := s.messageRepo.FindDeliveryByID(deliveryID)
	if err != nil {
		return MarkReadResult{Changed: true}, err
	}

	unread, err := s.messageRepo.CountUnreadForMessage(delivery.MessageID)
	if err != nil {
		return MarkReadResult{Changed: true}, err
	}
	if unread > 0 {
		return MarkReadResult{Changed: true}, nil
	}

	if err := s.messageRepo.SoftDelete(delivery.MessageID, time.Now().UTC()); err != nil {
		return MarkReadResult{Changed: true}, err
	}
	return MarkReadResult{Changed: true, SoftDeleted: true}, nil
}

// CleanupIfAllRead is the second phase of the read lifecycle, called when
// the viewing client closes the media. It re-verifies that nothing is left
// unread, deletes the remote object best-effort, and stamps deleted_at.
// Remote deletion is decoupled from the read transition so a slow client is
// never cut off mid-stream.
func (s *MessageService) CleanupIfAllRead(ctx context.Context, messageID uint, fileKey string, userID uint) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return err
	}

	if message.SenderID != userID {
		involved, err := s.messageRepo.HasDelivery(messageID, userID)
		if err != nil {
			return err
		}
		if !involved {
			return ErrNotParticipant
		}
	}

	unread, err := s.messageRepo.CountUnreadForMessage(messageID)
	if err != nil {
		return err
	}
	if unread > 0 {
		return ErrUnreadRemaining
	}

	// Only ever delete the key recorded on the message row. The caller's
	// hint is accepted solely as a cross-check; trusting it would let any
	// participant remove an unrelated object from the bucket.
	key := message.FileKey
	if fileKey != "" && fileKey != key {
		log.Printf("cleanup: file key mismatch message=%d got=%q", messageID, fileKey)
	}
	if s.files != nil && key != "" {
		// Best-effort: a missing object or a flaky store must not block the
		// soft delete; the sweep retries removal later anyway.
		if err := s.files.DeleteObject(ctx, key); err != nil {
			log.Printf("cleanup: remote delete failed message=%d key=%q err=%v", messageID, key, err)
		}
	}

	return s.messageRepo.SoftDelete(messageID, time.Now().UTC())
}

// SendStatus exposes the tracker's live entries for the caller.
func (s *MessageService) SendStatus(senderID uint) []status.Entry {
	if s.tracker == nil {
		return nil
	}
	return s.tracker.List(senderID)
}

// dedupIDs keeps the first occurrence of each id, preserving order. A
// duplicated recipient would otherwise produce duplicate deliveries and
// skew the all-read check.
func dedupIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
