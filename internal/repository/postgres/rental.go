package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository"
)

const rentalColumns = `id, COALESCE(user_id, 0), COALESCE(equipment_id, 0), quantity_rented, rental_date, due_date, return_date, status`

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (user_id, equipment_id, quantity_rented, rental_date, due_date, status)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	logger.DatabaseCall("RentalRepository.Create", query, "user_id", rt.UserID, "equipment_id", rt.EquipmentID)

	err := r.db.QueryRowContext(ctx, query, rt.UserID, rt.EquipmentID, rt.QuantityRented, rt.RentalDate, rt.DueDate, rt.Status).Scan(&rt.ID)
	if err != nil {
		logger.DatabaseResult("RentalRepository.Create", 0, err)
		return err
	}
	logger.DatabaseResult("RentalRepository.Create", 1, nil, "id", rt.ID)
	return nil
}

func (r *rentalRepository) GetActiveForUpdate(ctx context.Context, id int32, userID *int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 AND status IN ('rented', 'overdue')`
	args := []any{id}
	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}
	query += ` FOR UPDATE`

	rt := &domain.Rental{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&rt.ID, &rt.UserID, &rt.EquipmentID, &rt.QuantityRented, &rt.RentalDate, &rt.DueDate, &rt.ReturnDate, &rt.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFoundOrAlreadyReturned
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rental %d: %w", id, err)
	}
	return rt, nil
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id int32, returnDate time.Time) error {
	query := `UPDATE rentals SET return_date = $1, status = 'returned' WHERE id = $2 AND status IN ('rented', 'overdue')`
	logger.DatabaseCall("RentalRepository.MarkReturned", query, "id", id)

	res, err := r.db.ExecContext(ctx, query, returnDate, id)
	if err != nil {
		logger.DatabaseResult("RentalRepository.MarkReturned", 0, err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("RentalRepository.MarkReturned", n, nil)
	if n == 0 {
		return repository.ErrNotApplied
	}
	return nil
}

func (r *rentalRepository) MarkOverdue(ctx context.Context, today time.Time, userID *int32) (int64, error) {
	query := `UPDATE rentals SET status = 'overdue' WHERE status = 'rented' AND due_date < $1`
	args := []any{today}
	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}
	logger.DatabaseCall("RentalRepository.MarkOverdue", query, "today", today.Format(time.DateOnly))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("RentalRepository.MarkOverdue", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	logger.DatabaseResult("RentalRepository.MarkOverdue", n, nil)
	return n, nil
}

func (r *rentalRepository) CountActiveByUser(ctx context.Context, userID int32) (int32, error) {
	var n int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE user_id = $1 AND status IN ('rented', 'overdue')`, userID).Scan(&n)
	return n, err
}

func (r *rentalRepository) CountActiveByEquipment(ctx context.Context, equipmentID int32) (int32, error) {
	var n int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE equipment_id = $1 AND status IN ('rented', 'overdue')`, equipmentID).Scan(&n)
	return n, err
}

func (r *rentalRepository) ListOverdue(ctx context.Context) ([]domain.OverdueNotice, error) {
	query := `SELECT rentals.id, users.name, users.email, equipment.name, rentals.quantity_rented, rentals.due_date
	          FROM rentals
	          JOIN users ON rentals.user_id = users.id
	          JOIN equipment ON rentals.equipment_id = equipment.id
	          WHERE rentals.status = 'overdue'
	          ORDER BY rentals.due_date ASC`
	logger.DatabaseCall("RentalRepository.ListOverdue", query)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []domain.OverdueNotice
	for rows.Next() {
		var n domain.OverdueNotice
		if err := rows.Scan(&n.RentalID, &n.UserName, &n.UserEmail, &n.EquipmentName, &n.Quantity, &n.DueDate); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}
