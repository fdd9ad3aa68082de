package services

import (
	"github.com/google/uuid"

	"gridbase/internal/apperrors"
	"gridbase/internal/models"
	"gridbase/internal/repositories"
)

type UserService struct {
	userRepo    *repositories.UserRepository
	sessionRepo *repositories.SessionRepository
}

func NewUserService(userRepo *repositories.UserRepository, sessionRepo *repositories.SessionRepository) *UserService {
	return &UserService{userRepo: userRepo, sessionRepo: sessionRepo}
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

func (s *UserService) List() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Delete removes the account and revokes every live session.
func (s *UserService) Delete(id uuid.UUID) error {
	user, err := s.userRepo.FindUserByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NotFound("user")
	}
	if err := s.sessionRepo.RevokeAllForUser(id); err != nil {
		return err
	}
	return s.userRepo.Delete(id)
}
