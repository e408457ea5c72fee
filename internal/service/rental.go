package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository"
)

type rentalService struct {
	txr        repository.Transactor
	rentalRepo repository.RentalRepository
	now        Clock
}

func NewRentalService(txr repository.Transactor, rentalRepo repository.RentalRepository, now Clock) RentalService {
	if now == nil {
		now = time.Now
	}
	return &rentalService{
		txr:        txr,
		rentalRepo: rentalRepo,
		now:        now,
	}
}

// Rent checks the user's quota and the equipment's stock, then records the
// rental and decrements stock. All steps share one transaction holding row
// locks on the user and the equipment, so concurrent rents serialize.
func (s *rentalService) Rent(ctx context.Context, userID, equipmentID, quantity int32, durationDays int) (rental *domain.Rental, err error) {
	const method = "RentalService.Rent"
	ctx, span := startSpan(ctx, method,
		attribute.Int("user.id", int(userID)),
		attribute.Int("equipment.id", int(equipmentID)),
		attribute.Int("rental.quantity", int(quantity)),
		attribute.Int("rental.duration_days", durationDays))
	logger.EnterMethod(method, "user_id", userID, "equipment_id", equipmentID, "quantity", quantity, "duration_days", durationDays)
	defer func() { finish(span, method, err, "user_id", userID, "equipment_id", equipmentID) }()

	if quantity < 1 {
		return nil, domain.ValidationError("Quantity must be at least 1.")
	}
	if !domain.IsAllowedDuration(durationDays) {
		return nil, domain.ValidationError("Invalid rental duration. Choose 1, 3, 7, 14, or 30 days.")
	}

	today := domain.Today(s.now())
	err = s.txr.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		user, err := repos.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := repos.Rentals.MarkOverdue(ctx, today, &userID); err != nil {
			return fmt.Errorf("failed to sweep overdue rentals: %w", err)
		}

		active, err := repos.Rentals.CountActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if active >= user.MaxRentals {
			return domain.QuotaExceeded(user.MaxRentals)
		}

		eq, err := repos.Equipment.GetForUpdate(ctx, equipmentID)
		if err != nil {
			return err
		}
		if eq.AvailableQuantity < quantity {
			return domain.InsufficientStock(eq.AvailableQuantity)
		}

		r := &domain.Rental{
			UserID:         userID,
			EquipmentID:    equipmentID,
			QuantityRented: quantity,
			RentalDate:     today,
			DueDate:        domain.DueDate(today, durationDays),
			Status:         domain.RentalStatusRented,
		}
		if err := repos.Rentals.Create(ctx, r); err != nil {
			return fmt.Errorf("failed to create rental: %w", err)
		}
		if err := repos.Equipment.AdjustStock(ctx, equipmentID, -quantity); err != nil {
			logger.Fatal(ctx, "Stock decrement failed after rental insert",
				"rental_id", r.ID, "equipment_id", equipmentID, "quantity", quantity, "error", err)
			return domain.ConsistencyError("rent", err)
		}

		rental = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, rentalID, actingUserID int32, requireOwnership bool) (rental *domain.Rental, err error) {
	const method = "RentalService.ReturnRental"
	ctx, span := startSpan(ctx, method,
		attribute.Int("rental.id", int(rentalID)),
		attribute.Int("user.id", int(actingUserID)),
		attribute.Bool("rental.require_ownership", requireOwnership))
	logger.EnterMethod(method, "rental_id", rentalID, "acting_user_id", actingUserID, "require_ownership", requireOwnership)
	defer func() { finish(span, method, err, "rental_id", rentalID) }()

	var owner *int32
	if requireOwnership {
		owner = &actingUserID
	}

	today := domain.Today(s.now())
	err = s.txr.WithinTx(ctx, func(ctx context.Context, repos repository.Repos) error {
		r, err := repos.Rentals.GetActiveForUpdate(ctx, rentalID, owner)
		if err != nil {
			return err
		}

		if err := repos.Rentals.MarkReturned(ctx, r.ID, today); err != nil {
			logger.Fatal(ctx, "Failed to mark rental returned", "rental_id", r.ID, "error", err)
			return domain.ConsistencyError("return", err)
		}
		if err := repos.Equipment.AdjustStock(ctx, r.EquipmentID, r.QuantityRented); err != nil {
			logger.Fatal(ctx, "Stock restore failed after rental return",
				"rental_id", r.ID, "equipment_id", r.EquipmentID, "quantity", r.QuantityRented, "error", err)
			return domain.ConsistencyError("return", err)
		}

		r.Status = domain.RentalStatusReturned
		r.ReturnDate = &today
		rental = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

// SweepOverdue moves rented rentals whose due date has passed to overdue.
// A nil userID sweeps every user. Running it twice on the same day is a no-op
// the second time.
func (s *rentalService) SweepOverdue(ctx context.Context, userID *int32) (int64, error) {
	n, err := s.rentalRepo.MarkOverdue(ctx, domain.Today(s.now()), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep overdue rentals: %w", err)
	}
	if n > 0 {
		logger.InfoContext(ctx, "Marked rentals overdue", "count", n)
	}
	return n, nil
}

func (s *rentalService) OverdueNotices(ctx context.Context) ([]domain.OverdueNotice, error) {
	notices, err := s.rentalRepo.ListOverdue(ctx)
	if err != nil {
		return nil, err
	}
	today := domain.Today(s.now())
	for i := range notices {
		notices[i].DaysOverdue = domain.DaysBetween(notices[i].DueDate, today)
	}
	return notices, nil
}

