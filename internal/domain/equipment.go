package domain

import "time"

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionGood Condition = "good"
	ConditionFair Condition = "fair"
	ConditionPoor Condition = "poor"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type Equipment struct {
	ID                int32     `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	SerialNumber      string    `json:"serial_number"`
	Condition         Condition `json:"condition"`
	TotalQuantity     int32     `json:"total_quantity"`
	AvailableQuantity int32     `json:"available_quantity"`
	Description       string    `json:"description"`
	CreatedOn         time.Time `json:"created_on"`
}

// EquipmentInput carries the admin-editable fields of an equipment item.
type EquipmentInput struct {
	Name          string    `json:"name" validate:"required"`
	Category      string    `json:"category" validate:"required"`
	SerialNumber  string    `json:"serial_number" validate:"required"`
	Condition     Condition `json:"condition" validate:"required,oneof=new good fair poor"`
	TotalQuantity int32     `json:"total_quantity" validate:"gte=1"`
	Description   string    `json:"description"`
}

// RebalancedAvailable returns the available quantity after total_quantity
// changes from oldTotal to newTotal. Units currently rented out stay rented,
// so only the delta is applied, floored at zero.
func RebalancedAvailable(oldAvailable, oldTotal, newTotal int32) int32 {
	available := oldAvailable + (newTotal - oldTotal)
	if available < 0 {
		return 0
	}
	return available
}

type EquipmentFilter struct {
	Search    string
	Category  string
	Condition Condition
}

type Availability struct {
	ID                int32 `json:"id"`
	AvailableQuantity int32 `json:"available_quantity"`
}
