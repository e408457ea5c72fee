package service

import (
	"context"
	"errors"
	"strings"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository"
	"rentaltracker-backend/internal/security"
)

// LoginResult carries the session token and the CSRF token bound to it.
type LoginResult struct {
	Token     string       `json:"token"`
	CSRFToken string       `json:"csrf_token"`
	User      *domain.User `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login checks the username, the password and the role the client claims to
// log in as. Any mismatch yields the same InvalidCredentials error.
func (s *authService) Login(ctx context.Context, username, password string, role domain.Role) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	logger.EnterMethod("AuthService.Login", "username", username, "role", role)

	if username == "" || password == "" {
		return nil, domain.ValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Rejected("AuthService.Login", "unknown_username", "username", username)
			return nil, domain.ErrInvalidCredentials
		}
		logger.ExitMethodWithError("AuthService.Login", err)
		return nil, err
	}

	if !security.CheckPassword(user.PasswordHash, password) || user.Role != role {
		logger.Rejected("AuthService.Login", "credentials_mismatch", "user_id", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	token, csrf, err := s.tokens.GenerateSessionToken(user)
	if err != nil {
		logger.ExitMethodWithError("AuthService.Login", err, "user_id", user.ID)
		return nil, err
	}

	logger.ExitMethod("AuthService.Login", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, CSRFToken: csrf, User: user}, nil
}
