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

const equipmentColumns = `id, name, category, serial_number, condition, total_quantity, available_quantity, description, created_on`

type equipmentRepository struct {
	db DBTX
}

func NewEquipmentRepository(db DBTX) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

func scanEquipment(row interface{ Scan(...any) error }) (*domain.Equipment, error) {
	eq := &domain.Equipment{}
	err := row.Scan(&eq.ID, &eq.Name, &eq.Category, &eq.SerialNumber, &eq.Condition, &eq.TotalQuantity, &eq.AvailableQuantity, &eq.Description, &eq.CreatedOn)
	if err != nil {
		return nil, err
	}
	return eq, nil
}

func (r *equipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	query := `INSERT INTO equipment (name, category, serial_number, condition, total_quantity, available_quantity, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("EquipmentRepository.Create", query, "serial_number", eq.SerialNumber)

	eq.CreatedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, eq.Name, eq.Category, eq.SerialNumber, eq.Condition, eq.TotalQuantity, eq.AvailableQuantity, eq.Description, eq.CreatedOn).Scan(&eq.ID)
	if err != nil {
		logger.DatabaseResult("EquipmentRepository.Create", 0, err)
		return mapWriteError(err)
	}
	logger.DatabaseResult("EquipmentRepository.Create", 1, nil, "id", eq.ID)
	return nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	return r.get(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id)
}

func (r *equipmentRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Equipment, error) {
	return r.get(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1 FOR UPDATE`, id)
}

func (r *equipmentRepository) get(ctx context.Context, query string, id int32) (*domain.Equipment, error) {
	eq, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("equipment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment %d: %w", id, err)
	}
	return eq, nil
}

func (r *equipmentRepository) Update(ctx context.Context, eq *domain.Equipment) error {
	query := `UPDATE equipment SET name=$1, category=$2, serial_number=$3, condition=$4, total_quantity=$5, available_quantity=$6, description=$7 WHERE id=$8`
	logger.DatabaseCall("EquipmentRepository.Update", query, "id", eq.ID)

	res, err := r.db.ExecContext(ctx, query, eq.Name, eq.Category, eq.SerialNumber, eq.Condition, eq.TotalQuantity, eq.AvailableQuantity, eq.Description, eq.ID)
	if err != nil {
		logger.DatabaseResult("EquipmentRepository.Update", 0, err)
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("EquipmentRepository.Update", n, nil)
	if n == 0 {
		return domain.NotFound("equipment", eq.ID)
	}
	return nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id int32) error {
	query := `DELETE FROM equipment WHERE id = $1`
	logger.DatabaseCall("EquipmentRepository.Delete", query, "id", id)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.DatabaseResult("EquipmentRepository.Delete", 0, err)
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("EquipmentRepository.Delete", n, nil)
	if n == 0 {
		return domain.NotFound("equipment", id)
	}
	return nil
}

// AdjustStock never lets available_quantity go negative and caps it at
// total_quantity, so the stock bounds hold whatever the caller passes.
func (r *equipmentRepository) AdjustStock(ctx context.Context, id int32, delta int32) error {
	query := `UPDATE equipment
	          SET available_quantity = LEAST(available_quantity + $1, total_quantity)
	          WHERE id = $2 AND available_quantity + $1 >= 0`
	logger.DatabaseCall("EquipmentRepository.AdjustStock", query, "id", id, "delta", delta)

	res, err := r.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		logger.DatabaseResult("EquipmentRepository.AdjustStock", 0, err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("EquipmentRepository.AdjustStock", n, nil)
	if n == 0 {
		return repository.ErrNotApplied
	}
	return nil
}

func (r *equipmentRepository) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE 1=1`
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Condition != "" {
		args = append(args, filter.Condition)
		query += fmt.Sprintf(" AND condition = $%d", len(args))
	}
	query += " ORDER BY name ASC"
	logger.DatabaseCall("EquipmentRepository.Search", query, "args", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *eq)
	}
	return items, rows.Err()
}

func (r *equipmentRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM equipment ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *equipmentRepository) Availability(ctx context.Context, id *int32) ([]domain.Availability, error) {
	query := `SELECT id, available_quantity FROM equipment ORDER BY id`
	var args []any
	if id != nil {
		query = `SELECT id, available_quantity FROM equipment WHERE id = $1`
		args = append(args, *id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Availability
	for rows.Next() {
		var a domain.Availability
		if err := rows.Scan(&a.ID, &a.AvailableQuantity); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *equipmentRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM equipment GROUP BY category ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *equipmentRepository) Count(ctx context.Context) (int32, error) {
	var n int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipment`).Scan(&n)
	return n, err
}
