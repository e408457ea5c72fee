package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.EquipmentRepository
	repository.UserRepository
	repository.RentalRepository
	repository.ReportRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		EquipmentRepository: NewEquipmentRepository(db),
		UserRepository:      NewUserRepository(db),
		RentalRepository:    NewRentalRepository(db),
		ReportRepository:    NewReportRepository(db),
	}
}

func reposFor(db DBTX) repository.Repos {
	return repository.Repos{
		Equipment: NewEquipmentRepository(db),
		Users:     NewUserRepository(db),
		Rentals:   NewRentalRepository(db),
		Reports:   NewReportRepository(db),
	}
}

// WithinTx implements repository.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, reposFor(tx)); err != nil {
		logger.Debug("Transaction rolled back", "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
