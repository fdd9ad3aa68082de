package services

import (
	"errors"
	"time"

	"gridbase/internal/models"
	"gridbase/internal/repositories"
	"gridbase/internal/utils"
)

type AuthService struct {
	userRepo    *repositories.UserRepository
	sessionRepo *repositories.SessionRepository
}

func NewAuthService(userRepo *repositories.UserRepository, sessionRepo *repositories.SessionRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *AuthService) Register(user *models.User) (string, string, error) {
	existing, _ := s.userRepo.FindUserByEmail(user.Email)
	if existing != nil {
		return "", "", errors.New("user already exists")
	}

	if user.Password == "" {
		return "", "", errors.New("password is required")
	}
	hashedPassword, err := utils.Hash(user.Password)
	if err != nil {
		return "", "", err
	}
	user.PasswordHash = string(hashedPassword)
	user.Password = ""

	if err := s.userRepo.Create(user); err != nil {
		return "", "", err
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(email, password string) (string, string, error) {
	user, err := s.userRepo.FindUserByEmail(email)
	if err != nil || user == nil {
		return "", "", errors.New("user not found")
	}

	if err := utils.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", "", errors.New("invalid password")
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		return "", "", err
	}

	return s.issueTokens(user)
}

// Refresh rotates the token pair. The old session is revoked so a stolen
// refresh token dies on first reuse.
func (s *AuthService) Refresh(refreshToken string) (string, string, error) {
	claims, err := utils.VerifyJWT(refreshToken, utils.RefreshTokenSecret)
	if err != nil {
		return "", "", errors.New("invalid or expired refresh token")
	}

	session, err := s.sessionRepo.FindByRefreshToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if session == nil || session.IsRevoked || session.ExpiresAt.Before(time.Now()) {
		return "", "", errors.New("invalid or expired refresh token")
	}

	userID, err := utils.ParseUUID(claims.Subject)
	if err != nil {
		return "", "", errors.New("invalid token subject")
	}
	user, err := s.userRepo.FindUserByID(userID)
	if err != nil || user == nil {
		return "", "", errors.New("user not found")
	}

	if err := s.sessionRepo.Revoke(session.ID); err != nil {
		return "", "", err
	}

	return s.issueTokens(user)
}

func (s *AuthService) Logout(refreshToken string) error {
	session, err := s.sessionRepo.FindByRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	return s.sessionRepo.Revoke(session.ID)
}

func (s *AuthService) issueTokens(user *models.User) (string, string, error) {
	accessToken, refreshToken, _, err := utils.GenerateTokens(user.ID)
	if err != nil {
		return "", "", err
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(utils.RefreshTokenTTL),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
