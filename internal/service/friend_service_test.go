package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AugusDogus/whisp-sub001/internal/models"
)

func newTestFriendService(friendRepo *MockFriendRepository, userRepo *MockUserRepository) *FriendService {
	return NewFriendService(friendRepo, userRepo, nil)
}

func seedUsers(userRepo *MockUserRepository, n int) {
	for i := 1; i <= n; i++ {
		userRepo.Create(&models.User{
			Username: "user" + string(rune('0'+i)),
			Email:    "user" + string(rune('0'+i)) + "@example.com",
		})
	}
}

func TestSendRequest(t *testing.T) {
	friendRepo := NewMockFriendRepository()
	userRepo := NewMockUserRepository()
	seedUsers(userRepo, 3)
	svc := newTestFriendService(friendRepo, userRepo)

	request, err := svc.SendRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}
	if request.Status != models.RequestPending {
		t.Errorf("status = %q, want pending", request.Status)
	}
	if request.FromUserID != 1 || request.ToUserID != 2 {
		t.Errorf("pair = (%d,%d), want (1,2)", request.FromUserID, request.ToUserID)
	}
}

func TestSendRequestRejections(t *testing.T) {
	friendRepo := NewMockFriendRepository()
	userRepo := NewMockUserRepository()
	seedUsers(userRepo, 3)
	friendRepo.AddFriendship(1, 3)
	svc := newTestFriendService(friendRepo, userRepo)

	if _, err := svc.SendRequest(context.Background(), 1, 2); err != nil {
		t.Fatalf("seed request error = %v", err)
	}

	tests := []struct {
		name    string
		fromID  uint
		toID    uint
		wantErr error
	}{
		{"self request", 1, 1, ErrSelfRequest},
		{"unknown user", 1, 99, ErrUserNotFound},
		{"already friends", 1, 3, ErrAlreadyFriends},
		{"duplicate pending", 1, 2, ErrRequestExists},
		{"reverse duplicate pending", 2, 1, ErrRequestExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendRequest(context.Background(), tt.fromID, tt.toID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SendRequest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAcceptRequestCreatesOneFriendship(t *testing.T) {
	friendRepo := NewMockFriendRepository()
	userRepo := NewMockUserRepository()
	seedUsers(userRepo, 2)
	svc := newTestFriendService(friendRepo, userRepo)

	request, err := svc.SendRequest(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}

	accepted, err := svc.AcceptRequest(request.ID, 1)
	if err != nil {
		t.Fatalf("AcceptRequest() error = %v", err)
	}
	if accepted.Status != models.RequestAccepted {
		t.Errorf("status = %q, want accepted", accepted.Status)
	}

	// One normalized row, visible from both sides.
	if len(friendRepo.friendships) != 1 {
		t.Errorf("friendships = %d, want 1", len(friendRepo.friendships))
	}
	for _, userID := range []uint{1, 2} {
		exists, _ := friendRepo.FriendshipExists(1, 2)
		if !exists {
			t.Errorf("friendship missing from user %d's view", userID)
		}
	}
}

func TestAcceptRequestGuards(t *testing.T) {
	friendRepo := NewMockFriendRepository()
	userRepo := NewMockUserRepository()
	seedUsers(userRepo, 3)
	svc := newTestFriendService(friendRepo, userRepo)

	request, err := svc.SendRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}

	// Only the addressee may accept.
	if _, err := svc.AcceptRequest(request.ID, 3); !errors.Is(err, ErrNotYourRequest) {
		t.Errorf("AcceptRequest(stranger) error = %v, want ErrNotYourRequest", err)
	}
	if _, err := svc.AcceptRequest(request.ID, 1); !errors.Is(err, ErrNotYourRequest) {
		t.Errorf("AcceptRequest(sender) error = %v, want ErrNotYourRequest", err)
	}
	if _, err := svc.AcceptRequest(99, 2); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("AcceptRequest(missing) error = %v, want ErrRequestNotFound", err)
	}

	if _, err := svc.AcceptRequest(request.ID, 2); err != nil {
		t.Fatalf("AcceptRequest() error = %v", err)
	}
	// Resolved requests cannot flip again.
	if _, err := svc.AcceptRequest(request.ID, 2); !errors.Is(err, ErrRequestResolved) {
		t.Errorf("AcceptRequest(resolved) error = %v, want ErrRequestResolved", err)
	}
}

func TestDeclineAndCancelRequest(t *testing.T) {
	friendRepo := NewMockFriendRepository()
	userRepo := NewMockUserRepository()
	seedUsers(userRepo, 2)
	svc := newTestFriendService(friendRepo, userRepo)

	request, err := svc.SendRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}

	// Sender cannot decline; addressee cannot cancel.
	if err := svc.DeclineRequest(request.ID, 1); !errors.Is(err, ErrNotYourRequest) {
		t.Errorf("DeclineRequest(sender) error = %v, want ErrNotYourRequest", err)
	}
	if err := svc.CancelRequest(request.ID, 2); !errors.Is(err, ErrNotYourRequest) {
		t.Errorf("CancelRequest(addressee) error = %v, want ErrNotYourRequest", err)
	}

	if err := svc.DeclineRequest(request.ID, 2); err != nil {
		t.Fatalf("DeclineRequest() error = %v", err)
	}
	if friendRepo.requests[request.ID].Status != models.RequestDeclined {
		t.Errorf("status = %q, want declined", friendRepo.requests[request.ID].Status)
	}
	if len(friendRepo.friendships) != 0 {
		t.Error("decline must not create a friendship")
	}

	// A declined pair can try again.
	second, err := svc.SendRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("SendRequest() after decline error = %v", err)
	}
	if err := svc.CancelRequest(second.ID, 1); err != nil {
		t.Fatalf("CancelRequest() error = %v", err)
	}
	if friendRepo.requests[second.ID].Status != models.RequestCancelled {
		t.Errorf("status = %q, want cancelled", friendRepo.requests[second.ID].Status)
	}
}

func TestSearchUsersAnnotations(t *testing.T) {
	friendRepo := NewMockFriendRepository()
	userRepo := NewMockUserRepository()
	seedUsers(userRepo, 4)
	friendRepo.AddFriendship(1, 2)
	svc := newTestFriendService(friendRepo, userRepo)

	if _, err := svc.SendRequest(context.Background(), 1, 3); err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}

	results, err := svc.SearchUsers(1, "user", 20)
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}

	// Caller excluded from their own results.
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	byID := make(map[uint]models.FriendResponse)
	for _, r := range results {
		byID[r.User.ID] = r
	}
	if !byID[2].IsFriend {
		t.Error("user 2 should be flagged as friend")
	}
	if !byID[3].HasPendingRequest {
		t.Error("user 3 should be flagged with pending request")
	}
	if byID[4].IsFriend || byID[4].HasPendingRequest {
		t.Error("user 4 should carry no flags")
	}
}
