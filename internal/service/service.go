package service

import (
	"context"
	"time"

	"rentaltracker-backend/internal/domain"
)

// Clock returns the current time. Services derive "today" from it.
type Clock func() time.Time

type AuthService interface {
	Login(ctx context.Context, username, password string, role domain.Role) (*LoginResult, error)
}

type EquipmentService interface {
	AddEquipment(ctx context.Context, input domain.EquipmentInput) (*domain.Equipment, error)
	EditEquipment(ctx context.Context, id int32, input domain.EquipmentInput) (*domain.Equipment, error)
	DeleteEquipment(ctx context.Context, id int32) error
	GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error)
	BrowseEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	ListCategories(ctx context.Context) ([]string, error)
	Availability(ctx context.Context, id *int32) ([]domain.Availability, error)
}

type UserService interface {
	CreateUser(ctx context.Context, input domain.UserInput) (*domain.User, error)
	EditUser(ctx context.Context, actor domain.Actor, id int32, input domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, id int32) error
	GetUser(ctx context.Context, id int32) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	QuotaFor(ctx context.Context, userID int32) (domain.Quota, error)
	// EnsureAdmin creates input as an administrator when no administrator exists yet.
	EnsureAdmin(ctx context.Context, input domain.UserInput) (bool, error)
}

type RentalService interface {
	Rent(ctx context.Context, userID, equipmentID, quantity int32, durationDays int) (*domain.Rental, error)
	// ReturnRental closes an active rental. With requireOwnership the rental
	// must belong to actingUserID; administrators pass false.
	ReturnRental(ctx context.Context, rentalID, actingUserID int32, requireOwnership bool) (*domain.Rental, error)
	SweepOverdue(ctx context.Context, userID *int32) (int64, error)
	OverdueNotices(ctx context.Context) ([]domain.OverdueNotice, error)
}

type ReportService interface {
	AdminDashboard(ctx context.Context) (*domain.AdminDashboard, error)
	AdminRentals(ctx context.Context, filter domain.RentalFilter) (*domain.AdminRentals, error)
	UserDashboard(ctx context.Context, userID int32) (*domain.UserDashboard, error)
	UserRentals(ctx context.Context, userID int32) (*domain.UserRentals, error)
}

type EmailService interface {
	SendOverdueReminder(ctx context.Context, notice domain.OverdueNotice) error
}
