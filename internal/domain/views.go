package domain

import "time"

type StatusCounts struct {
	Rented   int32 `json:"rented"`
	Overdue  int32 `json:"overdue"`
	Returned int32 `json:"returned"`
}

func (c StatusCounts) Total() int32 {
	return c.Rented + c.Overdue + c.Returned
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int32  `json:"count"`
}

type AdminDashboard struct {
	TotalEquipment int32           `json:"total_equipment"`
	TotalUsers     int32           `json:"total_users"`
	Counts         StatusCounts    `json:"counts"`
	Categories     []CategoryCount `json:"categories"`
	RecentRentals  []RentalView    `json:"recent_rentals"`
}

type AdminRentals struct {
	Total   int32        `json:"total"`
	Counts  StatusCounts `json:"counts"`
	Rentals []RentalView `json:"rentals"`
}

type UserDashboard struct {
	ActiveCount    int32        `json:"active_count"`
	OverdueCount   int32        `json:"overdue_count"`
	MaxRentals     int32        `json:"max_rentals"`
	RemainingSlots int32        `json:"remaining_slots"`
	CurrentRentals []RentalView `json:"current_rentals"`
}

type UserRentals struct {
	Total           int32        `json:"total"`
	CurrentlyRented int32        `json:"currently_rented"`
	ReturnedOnTime  int32        `json:"returned_on_time"`
	ReturnedLate    int32        `json:"returned_late"`
	CurrentRentals  []RentalView `json:"current_rentals"`
	History         []RentalView `json:"history"`
}

// OverdueNotice is a reminder target produced by the overdue sweep.
type OverdueNotice struct {
	RentalID      int32     `json:"rental_id"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	EquipmentName string    `json:"equipment_name"`
	Quantity      int32     `json:"quantity"`
	DueDate       time.Time `json:"due_date"`
	DaysOverdue   int       `json:"days_overdue"`
}
