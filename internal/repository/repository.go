package repository

import (
	"context"
	"errors"
	"time"

	"rentaltracker-backend/internal/domain"
)

// ErrNotApplied is returned when a guarded UPDATE matched no rows.
var ErrNotApplied = errors.New("conditional update matched no rows")

type EquipmentRepository interface {
	Create(ctx context.Context, eq *domain.Equipment) error
	GetByID(ctx context.Context, id int32) (*domain.Equipment, error)
	// GetForUpdate reads the row and holds its lock until the transaction ends.
	GetForUpdate(ctx context.Context, id int32) (*domain.Equipment, error)
	Update(ctx context.Context, eq *domain.Equipment) error
	Delete(ctx context.Context, id int32) error
	// AdjustStock adds delta to available_quantity in a single statement.
	// It returns ErrNotApplied when the result would drop below zero.
	AdjustStock(ctx context.Context, id int32, delta int32) error
	Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	ListCategories(ctx context.Context) ([]string, error)
	Availability(ctx context.Context, id *int32) ([]domain.Availability, error)
	CountByCategory(ctx context.Context) ([]domain.CategoryCount, error)
	Count(ctx context.Context) (int32, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int32, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	// GetActiveForUpdate locks a rented or overdue rental. When userID is set
	// the rental must also belong to that user.
	GetActiveForUpdate(ctx context.Context, id int32, userID *int32) (*domain.Rental, error)
	MarkReturned(ctx context.Context, id int32, returnDate time.Time) error
	MarkOverdue(ctx context.Context, today time.Time, userID *int32) (int64, error)
	CountActiveByUser(ctx context.Context, userID int32) (int32, error)
	CountActiveByEquipment(ctx context.Context, equipmentID int32) (int32, error)
	ListOverdue(ctx context.Context) ([]domain.OverdueNotice, error)
}

type ReportRepository interface {
	StatusCounts(ctx context.Context, userID *int32) (domain.StatusCounts, error)
	ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.RentalView, error)
	RecentRentals(ctx context.Context, limit int) ([]domain.RentalView, error)
	CurrentRentals(ctx context.Context, userID int32) ([]domain.RentalView, error)
	RentalHistory(ctx context.Context, userID int32) ([]domain.RentalView, error)
	ReturnTimeliness(ctx context.Context, userID int32) (onTime int32, late int32, err error)
}

// Repos groups repositories bound to the same connection or transaction.
type Repos struct {
	Equipment EquipmentRepository
	Users     UserRepository
	Rentals   RentalRepository
	Reports   ReportRepository
}

// Transactor runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
