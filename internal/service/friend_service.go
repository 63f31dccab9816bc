package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AugusDogus/whisp-sub001/internal/models"
	"github.com/AugusDogus/whisp-sub001/internal/repository"
)

var (
	ErrSelfRequest     = errors.New("cannot send a friend request to yourself")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrRequestExists   = errors.New("a pending request already covers this pair")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrNotYourRequest  = errors.New("friend request does not belong to this user")
	ErrRequestResolved = errors.New("friend request already resolved")
)

type FriendService struct {
	friendRepo repository.FriendRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	notifier   *NotificationService
}

func NewFriendService(
	friendRepo repository.FriendRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	notifier *NotificationService,
) *FriendService {
	return &FriendService{friendRepo: friendRepo, userRepo: userRepo, notifier: notifier}
}

// SendRequest creates a pending invitation unless the pair is already
// covered by a friendship or a pending request in either direction.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID uint) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, ErrSelfRequest
	}
	if _, err := s.userRepo.FindByID(toID); err != nil {
		return nil, ErrUserNotFound
	}

	friends, err := s.friendRepo.FriendshipExists(fromID, toID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	if _, err := s.friendRepo.FindPendingBetween(fromID, toID); err == nil {
		return nil, ErrRequestExists
	}

	request := &models.FriendRequest{
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     models.RequestPending,
	}
	if err := s.friendRepo.CreateRequest(request); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if sender, err := s.userRepo.FindByID(fromID); err == nil {
			s.notifier.NotifyFriendRequest(ctx, sender, toID)
		}
	}

	return s.friendRepo.FindRequestByID(request.ID)
}

// AcceptRequest transitions the request to accepted and materializes the
// normalized friendship row in one transaction. Only the addressee may
// accept, and exactly one friendship exists afterwards regardless of which
// side initiated.
func (s *FriendService) AcceptRequest(requestID, userID uint) (*models.FriendRequest, error) {
	request, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	if request.ToUserID != userID {
		return nil, ErrNotYourRequest
	}
	if request.Status != models.RequestPending {
		return nil, ErrRequestResolved
	}

	if err := s.friendRepo.AcceptRequest(request); err != nil {
		return nil, err
	}
	request.Status = models.RequestAccepted
	return request, nil
}

func (s *FriendService) DeclineRequest(requestID, userID uint) error {
	request, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		return ErrRequestNotFound
	}
	if request.ToUserID != userID {
		return ErrNotYourRequest
	}
	if request.Status != models.RequestPending {
		return ErrRequestResolved
	}
	return s.friendRepo.UpdateRequestStatus(requestID, models.RequestDeclined)
}

// CancelRequest is the sender-side withdrawal of a pending request.
func (s *FriendService) CancelRequest(requestID, userID uint) error {
	request, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		return ErrRequestNotFound
	}
	if request.FromUserID != userID {
		return ErrNotYourRequest
	}
	if request.Status != models.RequestPending {
		return ErrRequestResolved
	}
	return s.friendRepo.UpdateRequestStatus(requestID, models.RequestCancelled)
}

func (s *FriendService) ListFriends(userID uint) ([]models.User, error) {
	return s.friendRepo.ListFriends(userID)
}

func (s *FriendService) IncomingRequests(userID uint) ([]models.FriendRequest, error) {
	return s.friendRepo.ListIncomingPending(userID)
}

// SearchUsers returns candidates annotated with relationship flags so the
// client can render the right call-to-action without extra round trips.
func (s *FriendService) SearchUsers(userID uint, query string, limit int) ([]models.FriendResponse, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return []models.FriendResponse{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := s.userRepo.SearchUsers(query, limit)
	if err != nil {
		return nil, err
	}

	friendIDs, err := s.friendRepo.ListFriendIDs(userID)
	if err != nil {
		return nil, err
	}
	friendSet := make(map[uint]struct{}, len(friendIDs))
	for _, id := range friendIDs {
		friendSet[id] = struct{}{}
	}

	results := make([]models.FriendResponse, 0, len(users))
	for i := range users {
		if users[i].ID == userID {
			continue
		}

		_, isFriend := friendSet[users[i].ID]
		pending := false
		if !isFriend {
			if _, err := s.friendRepo.FindPendingBetween(userID, users[i].ID); err == nil {
				pending = true
			}
		}

		results = append(results, models.FriendResponse{
			User:              users[i].ToResponse(),
			IsFriend:          isFriend,
			HasPendingRequest: pending,
		})
	}
	return results, nil
}
