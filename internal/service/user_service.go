package service

import (
	"errors"
	"strings"

	"github.com/AugusDogus/whisp-sub001/internal/models"
	"github.com/AugusDogus/whisp-sub001/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

type UpdateProfileInput struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

func (s *UserService) IsUsernameAvailable(username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, errors.New("username cannot be empty")
	}

	if _, err := s.userRepo.FindByUsername(username); err != nil {
		// Username not found = available
		return true, nil
	}
	return false, nil
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if input.Username != "" {
		username := strings.TrimSpace(input.Username)
		if username != user.Username {
			available, err := s.IsUsernameAvailable(username)
			if err != nil {
				return nil, err
			}
			if !available {
				return nil, errors.New("username already taken")
			}
			user.Username = username
		}
	}

	if input.DisplayName != "" {
		user.DisplayName = strings.TrimSpace(input.DisplayName)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}
	return s.userRepo.FindByUsername(username)
}
