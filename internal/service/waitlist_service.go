package service

import (
	"github.com/AugusDogus/whisp-sub001/internal/repository"
)

type WaitlistService struct {
	waitlistRepo repository.WaitlistRepositoryInterface
}

func NewWaitlistService(waitlistRepo repository.WaitlistRepositoryInterface) *WaitlistService {
	return &WaitlistService{waitlistRepo: waitlistRepo}
}

// Join signs the user up; repeat joins are no-ops.
func (s *WaitlistService) Join(userID uint) error {
	return s.waitlistRepo.Join(userID)
}

type WaitlistStatus struct {
	Joined bool  `json:"joined"`
	Total  int64 `json:"total"`
}

func (s *WaitlistService) Status(userID uint) (WaitlistStatus, error) {
	total, err := s.waitlistRepo.Count()
	if err != nil {
		return WaitlistStatus{}, err
	}

	joined := false
	if _, err := s.waitlistRepo.FindByUser(userID); err == nil {
		joined = true
	}
	return WaitlistStatus{Joined: joined, Total: total}, nil
}
