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

const userColumns = `id, name, email, username, password_hash, role, max_rentals, created_on`

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.MaxRentals, &u.CreatedOn); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (name, email, username, password_hash, role, max_rentals, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("UserRepository.Create", query, "username", u.Username)

	u.CreatedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, u.Name, u.Email, u.Username, u.PasswordHash, u.Role, u.MaxRentals, u.CreatedOn).Scan(&u.ID)
	if err != nil {
		logger.DatabaseResult("UserRepository.Create", 0, err)
		return mapWriteError(err)
	}
	logger.DatabaseResult("UserRepository.Create", 1, nil, "id", u.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetForUpdate(ctx context.Context, id int32) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *userRepository) get(ctx context.Context, query string, id int32) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.CodeNotFound, "user not found").WithMeta("username", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, email=$2, username=$3, password_hash=$4, role=$5, max_rentals=$6 WHERE id=$7`
	logger.DatabaseCall("UserRepository.Update", query, "id", u.ID)

	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.Username, u.PasswordHash, u.Role, u.MaxRentals, u.ID)
	if err != nil {
		logger.DatabaseResult("UserRepository.Update", 0, err)
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UserRepository.Update", n, nil)
	if n == 0 {
		return domain.NotFound("user", u.ID)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int32) error {
	query := `DELETE FROM users WHERE id = $1`
	logger.DatabaseCall("UserRepository.Delete", query, "id", id)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.DatabaseResult("UserRepository.Delete", 0, err)
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UserRepository.Delete", n, nil)
	if n == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int32, error) {
	var n int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, err
}
