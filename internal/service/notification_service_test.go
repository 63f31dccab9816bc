package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AugusDogus/whisp-sub001/internal/models"
)

func TestRegisterTokenValidation(t *testing.T) {
	svc := NewNotificationService(NewMockPushTokenRepository(), NewMockUserRepository(), nil)

	if _, err := svc.RegisterToken(1, "", models.PlatformIOS); !errors.Is(err, ErrMissingToken) {
		t.Errorf("empty token error = %v, want ErrMissingToken", err)
	}
	if _, err := svc.RegisterToken(1, "ExponentPushToken[abc]", "windows"); !errors.Is(err, ErrInvalidPlatform) {
		t.Errorf("bad platform error = %v, want ErrInvalidPlatform", err)
	}
}

func TestRegisterTokenUpsert(t *testing.T) {
	tokenRepo := NewMockPushTokenRepository()
	svc := NewNotificationService(tokenRepo, NewMockUserRepository(), nil)

	if _, err := svc.RegisterToken(1, "ExponentPushToken[abc]", models.PlatformIOS); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}
	// Re-registering the same token is an update, not a duplicate.
	if _, err := svc.RegisterToken(1, "ExponentPushToken[abc]", models.PlatformIOS); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}
	if len(tokenRepo.tokens) != 1 {
		t.Errorf("tokens = %d, want 1", len(tokenRepo.tokens))
	}

	// A token re-registered under another account moves to that account.
	if _, err := svc.RegisterToken(2, "ExponentPushToken[abc]", models.PlatformIOS); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}
	mine, _ := svc.ListTokens(1)
	theirs, _ := svc.ListTokens(2)
	if len(mine) != 0 || len(theirs) != 1 {
		t.Errorf("token lists after reassignment: user1=%d user2=%d, want 0/1", len(mine), len(theirs))
	}
}

func TestRemoveToken(t *testing.T) {
	tokenRepo := NewMockPushTokenRepository()
	svc := NewNotificationService(tokenRepo, NewMockUserRepository(), nil)

	if _, err := svc.RegisterToken(1, "ExponentPushToken[abc]", models.PlatformAndroid); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}

	// Someone else's userID doesn't match; the row stays.
	if err := svc.RemoveToken(2, "ExponentPushToken[abc]"); err != nil {
		t.Fatalf("RemoveToken() error = %v", err)
	}
	if len(tokenRepo.tokens) != 1 {
		t.Error("token removed by a non-owner")
	}

	if err := svc.RemoveToken(1, "ExponentPushToken[abc]"); err != nil {
		t.Fatalf("RemoveToken() error = %v", err)
	}
	if len(tokenRepo.tokens) != 0 {
		t.Error("token not removed by owner")
	}

	// Removing an already-gone token is benign.
	if err := svc.RemoveToken(1, "ExponentPushToken[abc]"); err != nil {
		t.Errorf("repeat RemoveToken() error = %v, want nil", err)
	}
}

func TestUpdatePreferences(t *testing.T) {
	userRepo := NewMockUserRepository()
	userRepo.Create(&models.User{Username: "a", Email: "a@x.com", NotifyMessages: true, NotifyFriendRequests: true})
	svc := NewNotificationService(NewMockPushTokenRepository(), userRepo, nil)

	updated, err := svc.UpdatePreferences(1, models.NotificationPreferences{NotifyMessages: false, NotifyFriendRequests: true})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if updated.NotifyMessages {
		t.Error("NotifyMessages still true after update")
	}

	prefs, err := svc.GetPreferences(1)
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if prefs.NotifyMessages || !prefs.NotifyFriendRequests {
		t.Errorf("prefs = %+v, want messages off, friend requests on", prefs)
	}
}

func TestNotifyNewMessageRespectsPreferences(t *testing.T) {
	userRepo := NewMockUserRepository()
	sender := &models.User{Username: "sender", Email: "s@x.com", DisplayName: "Sender"}
	userRepo.Create(sender)
	userRepo.Create(&models.User{Username: "muted", Email: "m@x.com", NotifyMessages: false})
	userRepo.Create(&models.User{Username: "listening", Email: "l@x.com", NotifyMessages: true})

	tokenRepo := NewMockPushTokenRepository()
	pushClient := &MockPushClient{}
	svc := NewNotificationService(tokenRepo, userRepo, pushClient)

	if _, err := svc.RegisterToken(2, "ExponentPushToken[muted]", models.PlatformIOS); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}
	if _, err := svc.RegisterToken(3, "ExponentPushToken[listening]", models.PlatformIOS); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}

	svc.NotifyNewMessage(context.Background(), sender, []uint{2, 3})

	if len(pushClient.sent) != 1 {
		t.Fatalf("push batches = %d, want 1", len(pushClient.sent))
	}
	if len(pushClient.sent[0]) != 1 || pushClient.sent[0][0] != "ExponentPushToken[listening]" {
		t.Errorf("pushed tokens = %v, want only the listening device", pushClient.sent[0])
	}
}

func TestNotifyFriendRequestRespectsPreferences(t *testing.T) {
	userRepo := NewMockUserRepository()
	sender := &models.User{Username: "sender", Email: "s@x.com"}
	userRepo.Create(sender)
	userRepo.Create(&models.User{Username: "muted", Email: "m@x.com", NotifyFriendRequests: false})

	tokenRepo := NewMockPushTokenRepository()
	pushClient := &MockPushClient{}
	svc := NewNotificationService(tokenRepo, userRepo, pushClient)

	if _, err := svc.RegisterToken(2, "ExponentPushToken[muted]", models.PlatformIOS); err != nil {
		t.Fatalf("RegisterToken() error = %v", err)
	}

	svc.NotifyFriendRequest(context.Background(), sender, 2)

	if len(pushClient.sent) != 0 {
		t.Errorf("push batches = %d, want 0 for a muted addressee", len(pushClient.sent))
	}
}
