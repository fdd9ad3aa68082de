package services

import (
	"strings"

	"github.com/google/uuid"

	"gridbase/internal/apperrors"
	"gridbase/internal/models"
	"gridbase/internal/repositories"
)

type CreateBaseRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateBaseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Role   string    `json:"role"`
}

type BaseService struct {
	baseRepo *repositories.BaseRepository
	userRepo *repositories.UserRepository
}

func NewBaseService(baseRepo *repositories.BaseRepository, userRepo *repositories.UserRepository) *BaseService {
	return &BaseService{baseRepo: baseRepo, userRepo: userRepo}
}

// Create makes a base and records the creator as its owner member.
func (s *BaseService) Create(userID uuid.UUID, req *CreateBaseRequest) (*models.Base, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("base name cannot be empty")
	}

	base := &models.Base{
		UserID:      userID,
		Name:        name,
		Description: req.Description,
	}
	if err := s.baseRepo.Create(base); err != nil {
		return nil, err
	}

	owner := &models.BaseMember{
		BaseID: base.ID,
		UserID: userID,
		Role:   models.RoleOwner,
	}
	if err := s.baseRepo.AddMember(owner); err != nil {
		return nil, err
	}

	return base, nil
}

func (s *BaseService) Get(id uuid.UUID) (*models.Base, error) {
	base, err := s.baseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, apperrors.NotFound("base")
	}
	return base, nil
}

func (s *BaseService) ListForUser(userID uuid.UUID) ([]models.Base, error) {
	bases, err := s.baseRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if bases == nil {
		bases = []models.Base{}
	}
	return bases, nil
}

func (s *BaseService) Update(id uuid.UUID, req *UpdateBaseRequest) (*models.Base, error) {
	base, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("base name cannot be empty")
		}
		base.Name = name
	}
	if req.Description != nil {
		base.Description = req.Description
	}
	if err := s.baseRepo.Update(base); err != nil {
		return nil, err
	}
	return base, nil
}

func (s *BaseService) Delete(id uuid.UUID) error {
	base, err := s.baseRepo.GetByID(id)
	if err != nil {
		return err
	}
	if base == nil {
		return apperrors.NotFound("base")
	}
	return s.baseRepo.Delete(id)
}

func (s *BaseService) AddMember(baseID uuid.UUID, req *AddMemberRequest) (*models.BaseMember, error) {
	if _, err := s.Get(baseID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	switch role {
	case models.RoleOwner, models.RoleManager, models.RoleMember:
	default:
		return nil, apperrors.Validation("unknown role '%s'", role)
	}

	member := &models.BaseMember{
		BaseID: baseID,
		UserID: req.UserID,
		Role:   role,
	}
	if err := s.baseRepo.AddMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *BaseService) ListMembers(baseID uuid.UUID) ([]models.BaseMember, error) {
	if _, err := s.Get(baseID); err != nil {
		return nil, err
	}
	members, err := s.baseRepo.GetMembers(baseID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.BaseMember{}
	}
	return members, nil
}

// RemoveMember drops a membership. The base owner cannot be removed.
func (s *BaseService) RemoveMember(baseID, userID uuid.UUID) error {
	base, err := s.Get(baseID)
	if err != nil {
		return err
	}
	if base.UserID == userID {
		return apperrors.Validation("cannot remove the base owner")
	}
	return s.baseRepo.RemoveMember(baseID, userID)
}

// IsManager reports whether the user may administer the base itself.
func (s *BaseService) IsManager(baseID uuid.UUID, user *models.User) (bool, error) {
	if user.IsSuperAdmin() {
		return true, nil
	}
	member, err := s.baseRepo.GetMember(baseID, user.ID)
	if err != nil {
		return false, err
	}
	return member != nil && member.CanEditStructure(), nil
}
