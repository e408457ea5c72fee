package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           int32     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	MaxRentals   int32     `json:"max_rentals"`
	CreatedOn    time.Time `json:"created_on"`
}

// UserInput is the account form submitted by an administrator. Password is
// required on create and optional on edit, where empty keeps the stored hash.
type UserInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"omitempty,eqfield=ConfirmPassword"`
	ConfirmPassword string `json:"confirm_password"`
	Role            Role   `json:"role" validate:"required,oneof=admin user"`
	MaxRentals      int32  `json:"max_rentals" validate:"gte=1"`
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	UserID int32
	Role   Role
	Name   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type Quota struct {
	MaxRentals  int32 `json:"max_rentals"`
	ActiveCount int32 `json:"active_count"`
	Remaining   int32 `json:"remaining"`
}

func NewQuota(maxRentals, activeCount int32) Quota {
	remaining := maxRentals - activeCount
	if remaining < 0 {
		remaining = 0
	}
	return Quota{MaxRentals: maxRentals, ActiveCount: activeCount, Remaining: remaining}
}
