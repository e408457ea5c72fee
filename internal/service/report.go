package service

import (
	"context"
	"fmt"
	"time"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/repository"
)

const recentRentalsLimit = 5

type reportService struct {
	reports   repository.ReportRepository
	equipment repository.EquipmentRepository
	users     repository.UserRepository
	rentals   RentalService
	now       Clock
}

// NewReportService builds the read-only views. Every view sweeps overdue
// rentals through rentals before reading statuses.
func NewReportService(
	reports repository.ReportRepository,
	equipment repository.EquipmentRepository,
	users repository.UserRepository,
	rentals RentalService,
	now Clock,
) ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportService{
		reports:   reports,
		equipment: equipment,
		users:     users,
		rentals:   rentals,
		now:       now,
	}
}

func (s *reportService) AdminDashboard(ctx context.Context) (*domain.AdminDashboard, error) {
	if _, err := s.rentals.SweepOverdue(ctx, nil); err != nil {
		return nil, err
	}

	totalEquipment, err := s.equipment.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.CountByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	counts, err := s.reports.StatusCounts(ctx, nil)
	if err != nil {
		return nil, err
	}
	categories, err := s.equipment.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.reports.RecentRentals(ctx, recentRentalsLimit)
	if err != nil {
		return nil, err
	}

	return &domain.AdminDashboard{
		TotalEquipment: totalEquipment,
		TotalUsers:     totalUsers,
		Counts:         counts,
		Categories:     categories,
		RecentRentals:  s.withDayCounts(recent),
	}, nil
}

func (s *reportService) AdminRentals(ctx context.Context, filter domain.RentalFilter) (*domain.AdminRentals, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ValidationError(fmt.Sprintf("unknown rental status %q", filter.Status))
	}
	if _, err := s.rentals.SweepOverdue(ctx, nil); err != nil {
		return nil, err
	}

	counts, err := s.reports.StatusCounts(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows, err := s.reports.ListRentals(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &domain.AdminRentals{
		Total:   counts.Total(),
		Counts:  counts,
		Rentals: s.withDayCounts(rows),
	}, nil
}

func (s *reportService) UserDashboard(ctx context.Context, userID int32) (*domain.UserDashboard, error) {
	if _, err := s.rentals.SweepOverdue(ctx, &userID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.reports.StatusCounts(ctx, &userID)
	if err != nil {
		return nil, err
	}
	current, err := s.reports.CurrentRentals(ctx, userID)
	if err != nil {
		return nil, err
	}

	quota := domain.NewQuota(user.MaxRentals, counts.Rented+counts.Overdue)
	return &domain.UserDashboard{
		ActiveCount:    counts.Rented,
		OverdueCount:   counts.Overdue,
		MaxRentals:     user.MaxRentals,
		RemainingSlots: quota.Remaining,
		CurrentRentals: s.withDayCounts(current),
	}, nil
}

func (s *reportService) UserRentals(ctx context.Context, userID int32) (*domain.UserRentals, error) {
	if _, err := s.rentals.SweepOverdue(ctx, &userID); err != nil {
		return nil, err
	}

	counts, err := s.reports.StatusCounts(ctx, &userID)
	if err != nil {
		return nil, err
	}
	onTime, late, err := s.reports.ReturnTimeliness(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, err := s.reports.CurrentRentals(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.reports.RentalHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.UserRentals{
		Total:           counts.Total(),
		CurrentlyRented: counts.Rented + counts.Overdue,
		ReturnedOnTime:  onTime,
		ReturnedLate:    late,
		CurrentRentals:  s.withDayCounts(current),
		History:         history,
	}, nil
}

func (s *reportService) withDayCounts(rows []domain.RentalView) []domain.RentalView {
	today := domain.Today(s.now())
	out := make([]domain.RentalView, len(rows))
	for i, r := range rows {
		out[i] = r
		if r.Status.Active() {
			out[i] = r.WithDayCounts(today)
		}
	}
	return out
}
