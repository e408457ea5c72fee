package service

import (
	"context"
	"fmt"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository"
	"rentaltracker-backend/internal/security"
)

type userService struct {
	txr        repository.Transactor
	userRepo   repository.UserRepository
	rentalRepo repository.RentalRepository
}

func NewUserService(txr repository.Transactor, userRepo repository.UserRepository, rentalRepo repository.RentalRepository) UserService {
	return &userService{
		txr:        txr,
		userRepo:   userRepo,
		rentalRepo: rentalRepo,
	}
}

func (s *userService) CreateUser(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	input = normalizeUser(input)
	logger.EnterMethod("UserService.CreateUser", "username", input.Username, "role", input.Role)

	if input.Password == "" {
		return nil, domain.ValidationError("password is required").WithMeta("fields", "password")
	}
	if err := validateInput(input); err != nil {
		logger.Rejected("UserService.CreateUser", "validation", "error", err)
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
		MaxRentals:   input.MaxRentals,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.ExitMethodWithError("UserService.CreateUser", err, "username", input.Username)
		return nil, err
	}

	logger.ExitMethod("UserService.CreateUser", "user_id", user.ID)
	return user, nil
}

// EditUser applies input to the account. An empty password keeps the stored
// hash, and an actor editing their own account cannot change its role.
func (s *userService) EditUser(ctx context.Context, actor domain.Actor, id int32, input domain.UserInput) (*domain.User, error) {
	input = normalizeUser(input)
	logger.EnterMethod("UserService.EditUser", "actor_id", actor.UserID, "user_id", id)

	var updated *domain.User
	err := s.txr.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		user, err := repos.Users.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if id == actor.UserID && input.Role != user.Role {
			logger.Warn("Ignoring role change on own account", "user_id", id, "requested_role", input.Role)
			input.Role = user.Role
		}
		if err := validateInput(input); err != nil {
			return err
		}

		user.Name = input.Name
		user.Email = input.Email
		user.Username = input.Username
		user.Role = input.Role
		user.MaxRentals = input.MaxRentals
		if input.Password != "" {
			hash, err := security.HashPassword(input.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = hash
		}

		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("UserService.EditUser", err, "user_id", id)
		return nil, err
	}

	logger.ExitMethod("UserService.EditUser", "user_id", id)
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor domain.Actor, id int32) error {
	logger.EnterMethod("UserService.DeleteUser", "actor_id", actor.UserID, "user_id", id)

	if id == actor.UserID {
		logger.Rejected("UserService.DeleteUser", "self_deletion", "user_id", id)
		return domain.ErrSelfDeletion
	}

	err := s.txr.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		if _, err := repos.Users.GetForUpdate(ctx, id); err != nil {
			return err
		}
		active, err := repos.Rentals.CountActiveByUser(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.HasActiveRentals("user", active)
		}
		return repos.Users.Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("UserService.DeleteUser", err, "user_id", id)
		return err
	}

	logger.ExitMethod("UserService.DeleteUser", "user_id", id)
	return nil
}

func (s *userService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) QuotaFor(ctx context.Context, userID int32) (domain.Quota, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.Quota{}, err
	}
	active, err := s.rentalRepo.CountActiveByUser(ctx, userID)
	if err != nil {
		return domain.Quota{}, err
	}
	return domain.NewQuota(user.MaxRentals, active), nil
}

func (s *userService) EnsureAdmin(ctx context.Context, input domain.UserInput) (bool, error) {
	admins, err := s.userRepo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}

	input.Role = domain.RoleAdmin
	input.ConfirmPassword = input.Password
	if input.MaxRentals == 0 {
		input.MaxRentals = 1
	}
	user, err := s.CreateUser(ctx, input)
	if err != nil {
		return false, err
	}
	logger.Info("Seeded administrator account", "user_id", user.ID, "username", user.Username)
	return true, nil
}
