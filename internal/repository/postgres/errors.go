package postgres

import (
	"errors"

	"github.com/lib/pq"

	"rentaltracker-backend/internal/domain"
)

const pqUniqueViolation = "23505"

// mapWriteError translates constraint violations into domain errors.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		switch pqErr.Constraint {
		case "equipment_serial_number_key":
			return &domain.Error{Code: domain.CodeDuplicateSerial, Message: "An item with this serial number already exists.", Err: err}
		case "users_username_key", "users_email_key":
			return &domain.Error{Code: domain.CodeDuplicateIdentity, Message: "Username or email already exists.", Err: err}
		}
	}
	return err
}
