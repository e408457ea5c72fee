package domain

import "time"

type RentalStatus string

const (
	RentalStatusRented   RentalStatus = "rented"
	RentalStatusOverdue  RentalStatus = "overdue"
	RentalStatusReturned RentalStatus = "returned"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusRented, RentalStatusOverdue, RentalStatusReturned:
		return true
	}
	return false
}

// Active reports whether the rental still holds units out of stock.
func (s RentalStatus) Active() bool {
	return s == RentalStatusRented || s == RentalStatusOverdue
}

// AllowedDurations lists the rental lengths, in days, a user may pick.
var AllowedDurations = []int{1, 3, 7, 14, 30}

func IsAllowedDuration(days int) bool {
	for _, d := range AllowedDurations {
		if d == days {
			return true
		}
	}
	return false
}

type Rental struct {
	ID             int32        `json:"id"`
	UserID         int32        `json:"user_id"`
	EquipmentID    int32        `json:"equipment_id"`
	QuantityRented int32        `json:"quantity_rented"`
	RentalDate     time.Time    `json:"rental_date"`
	DueDate        time.Time    `json:"due_date"`
	ReturnDate     *time.Time   `json:"return_date,omitempty"`
	Status         RentalStatus `json:"status"`
}

// RentalView is a rental joined with the names shown in listings.
type RentalView struct {
	Rental
	UserName          string `json:"user_name,omitempty"`
	EquipmentName     string `json:"equipment_name"`
	EquipmentCategory string `json:"equipment_category,omitempty"`
	DaysLeft          int    `json:"days_left"`
	DaysOverdue       int    `json:"days_overdue"`
}

// WithDayCounts fills DaysLeft and DaysOverdue relative to today.
func (v RentalView) WithDayCounts(today time.Time) RentalView {
	v.DaysLeft = DaysBetween(today, v.DueDate)
	v.DaysOverdue = 0
	if v.DaysLeft < 0 {
		v.DaysOverdue = -v.DaysLeft
	}
	return v
}

// Today truncates t to a calendar date in UTC.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DueDate(rentalDate time.Time, durationDays int) time.Time {
	return Today(rentalDate).AddDate(0, 0, durationDays)
}

// DaysBetween returns the whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Today(b).Sub(Today(a)).Hours() / 24)
}

type RentalFilter struct {
	Status RentalStatus
	Search string
}
