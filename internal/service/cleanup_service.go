package service

import (
	"context"
	"log"
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/repository"
)

const (
	// Soft-deleted messages are purged after 30 days; messages that were
	// never fully read are abandoned after 90.
	SoftDeletedRetention = 30 * 24 * time.Hour
	UnreadRetention      = 90 * 24 * time.Hour
)

type CleanupService struct {
	messageRepo repository.MessageRepositoryInterface
	files       FileStore
}

func NewCleanupService(messageRepo repository.MessageRepositoryInterface, files FileStore) *CleanupService {
	return &CleanupService{messageRepo: messageRepo, files: files}
}

type SweepResult struct {
	PurgedMessages   int64 `json:"purged_messages"`
	PurgedDeliveries int64 `json:"purged_deliveries"`
}

// Sweep hard-deletes expired messages and their deliveries. The caller
// supplies now (the cron handler passes wall-clock time; tests pass fixed
// instants). Deliveries always go before their messages to respect the
// foreign-key dependency direction. Remote object removal is best-effort;
// rows are purged regardless.
func (s *CleanupService) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	expired, err := s.messageRepo.ListExpired(
		now.Add(-SoftDeletedRetention),
		now.Add(-UnreadRetention),
	)
	if err != nil {
		return SweepResult{}, err
	}
	if len(expired) == 0 {
		return SweepResult{}, nil
	}

	ids := make([]uint, 0, len(expired))
	for _, message := range expired {
		ids = append(ids, message.ID)
		if s.files == nil || message.FileKey == "" {
			continue
		}
		// Most soft-deleted messages had their object removed at cleanup
		// time already; removing again is harmless.
		if err := s.files.DeleteObject(ctx, message.FileKey); err != nil {
			log.Printf("sweep: remote delete failed message=%d key=%q err=%v", message.ID, message.FileKey, err)
		}
	}

	deliveries, messages, err := s.messageRepo.PurgeMessages(ids)
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{PurgedMessages: messages, PurgedDeliveries: deliveries}, nil
}
