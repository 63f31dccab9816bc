package service

import (
	"context"
	"errors"
	"log"

	"github.com/AugusDogus/whisp-sub001/internal/models"
	"github.com/AugusDogus/whisp-sub001/internal/repository"
)

var (
	ErrMissingToken    = errors.New("token is required")
	ErrInvalidPlatform = errors.New("platform must be ios, android or web")
)

// PushClient is the transport slice the service needs; *push.Client
// satisfies it.
type PushClient interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

type NotificationService struct {
	pushTokenRepo repository.PushTokenRepositoryInterface
	userRepo      repository.UserRepositoryInterface
	push          PushClient
}

func NewNotificationService(
	pushTokenRepo repository.PushTokenRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	push PushClient,
) *NotificationService {
	return &NotificationService{pushTokenRepo: pushTokenRepo, userRepo: userRepo, push: push}
}

// RegisterToken upserts the device token. Registration is keyed on the
// globally unique token column; re-registering an existing token under a
// different user moves it to that user's device list.
func (s *NotificationService) RegisterToken(userID uint, token string, platform models.PushPlatform) (*models.PushToken, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if !models.ValidPushPlatform(platform) {
		return nil, ErrInvalidPlatform
	}

	row := &models.PushToken{UserID: userID, Token: token, Platform: platform}
	if err := s.pushTokenRepo.Upsert(row); err != nil {
		return nil, err
	}
	return row, nil
}

// RemoveToken deletes the caller's registration. A missing row is a benign
// no-op; the device is already unregistered.
func (s *NotificationService) RemoveToken(userID uint, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	_, err := s.pushTokenRepo.DeleteByUserAndToken(userID, token)
	return err
}

func (s *NotificationService) ListTokens(userID uint) ([]models.PushToken, error) {
	return s.pushTokenRepo.ListByUser(userID)
}

func (s *NotificationService) GetPreferences(userID uint) (models.NotificationPreferences, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return models.NotificationPreferences{}, err
	}
	return user.Preferences(), nil
}

func (s *NotificationService) UpdatePreferences(userID uint, prefs models.NotificationPreferences) (models.NotificationPreferences, error) {
	if err := s.userRepo.UpdatePreferences(userID, prefs); err != nil {
		return models.NotificationPreferences{}, err
	}
	return prefs, nil
}

// NotifyNewMessage pushes a "new whisp" notification to every recipient who
// hasn't muted messages. Strictly best-effort: failures are logged and
// swallowed, never surfaced to the sender.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, sender *models.User, recipientIDs []uint) {
	if s.push == nil {
		return
	}

	enabled := make([]uint, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		user, err := s.userRepo.FindByID(id)
		if err != nil || !user.NotifyMessages {
			continue
		}
		enabled = append(enabled, id)
	}

	tokens, err := s.pushTokenRepo.ListForUsers(enabled)
	if err != nil || len(tokens) == 0 {
		return
	}

	raw := make([]string, len(tokens))
	for i, t := range tokens {
		raw[i] = t.Token
	}

	title := sender.DisplayName
	if title == "" {
		title = sender.Username
	}
	if err := s.push.Send(ctx, raw, title, "sent you a whisp", map[string]string{"type": "message"}); err != nil {
		log.Printf("push: new message notification failed: %v", err)
	}
}

// NotifyFriendRequest pushes a friend-request notification, subject to the
// addressee's notify_friend_requests flag. Best-effort.
func (s *NotificationService) NotifyFriendRequest(ctx context.Context, from *models.User, toID uint) {
	if s.push == nil {
		return
	}

	user, err := s.userRepo.FindByID(toID)
	if err != nil || !user.NotifyFriendRequests {
		return
	}

	tokens, err := s.pushTokenRepo.ListForUsers([]uint{toID})
	if err != nil || len(tokens) == 0 {
		return
	}

	raw := make([]string, len(tokens))
	for i, t := range tokens {
		raw[i] = t.Token
	}

	title := from.DisplayName
	if title == "" {
		title = from.Username
	}
	if err := s.push.Send(ctx, raw, title, "wants to be your friend", map[string]string{"type": "friend_request"}); err != nil {
		log.Printf("push: friend request notification failed: %v", err)
	}
}
