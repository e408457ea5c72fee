package postgres

import (
	"context"
	"fmt"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository"
)

// Deleted accounts and items leave their rentals behind with NULL references.
const rentalViewSelect = `SELECT rentals.id, COALESCE(rentals.user_id, 0), COALESCE(rentals.equipment_id, 0),
	       rentals.quantity_rented, rentals.rental_date, rentals.due_date, rentals.return_date, rentals.status,
	       COALESCE(users.name, '(deleted)'), COALESCE(equipment.name, '(deleted)'), COALESCE(equipment.category, '')
	FROM rentals
	LEFT JOIN users ON rentals.user_id = users.id
	LEFT JOIN equipment ON rentals.equipment_id = equipment.id`

type reportRepository struct {
	db DBTX
}

func NewReportRepository(db DBTX) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) StatusCounts(ctx context.Context, userID *int32) (domain.StatusCounts, error) {
	query := `SELECT COUNT(*) FILTER (WHERE status = 'rented'),
	                 COUNT(*) FILTER (WHERE status = 'overdue'),
	                 COUNT(*) FILTER (WHERE status = 'returned')
	          FROM rentals`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}

	var c domain.StatusCounts
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.Rented, &c.Overdue, &c.Returned)
	return c, err
}

func (r *reportRepository) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.RentalView, error) {
	query := rentalViewSelect + ` WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND rentals.status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (users.name ILIKE $%d OR equipment.name ILIKE $%d)", len(args), len(args))
	}
	query += ` ORDER BY rentals.rental_date DESC, rentals.id DESC`
	return r.queryViews(ctx, "ReportRepository.ListRentals", query, args...)
}

func (r *reportRepository) RecentRentals(ctx context.Context, limit int) ([]domain.RentalView, error) {
	query := rentalViewSelect + ` ORDER BY rentals.rental_date DESC, rentals.id DESC LIMIT $1`
	return r.queryViews(ctx, "ReportRepository.RecentRentals", query, limit)
}

func (r *reportRepository) CurrentRentals(ctx context.Context, userID int32) ([]domain.RentalView, error) {
	query := rentalViewSelect + ` WHERE rentals.user_id = $1 AND rentals.status IN ('rented', 'overdue')
	ORDER BY rentals.due_date ASC`
	return r.queryViews(ctx, "ReportRepository.CurrentRentals", query, userID)
}

func (r *reportRepository) RentalHistory(ctx context.Context, userID int32) ([]domain.RentalView, error) {
	query := rentalViewSelect + ` WHERE rentals.user_id = $1 AND rentals.status = 'returned'
	ORDER BY rentals.return_date DESC`
	return r.queryViews(ctx, "ReportRepository.RentalHistory", query, userID)
}

func (r *reportRepository) ReturnTimeliness(ctx context.Context, userID int32) (int32, int32, error) {
	query := `SELECT COUNT(*) FILTER (WHERE return_date <= due_date),
	                 COUNT(*) FILTER (WHERE return_date > due_date)
	          FROM rentals WHERE user_id = $1 AND status = 'returned'`
	var onTime, late int32
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&onTime, &late)
	return onTime, late, err
}

func (r *reportRepository) queryViews(ctx context.Context, op, query string, args ...any) ([]domain.RentalView, error) {
	logger.DatabaseCall(op, query, "args", len(args))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return nil, err
	}
	defer rows.Close()

	var views []domain.RentalView
	for rows.Next() {
		var v domain.RentalView
		if err := rows.Scan(&v.ID, &v.UserID, &v.EquipmentID, &v.QuantityRented, &v.RentalDate, &v.DueDate, &v.ReturnDate, &v.Status,
			&v.UserName, &v.EquipmentName, &v.EquipmentCategory); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult(op, int64(len(views)), nil)
	return views, nil
}
