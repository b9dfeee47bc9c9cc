package domain

import (
	"time"
)

// AvailabilityWindow — еженедельное окно показов продавца для объекта.
// DayOfWeek: 0 — воскресенье, 6 — суббота. Времена хранятся как "HH:MM".
type AvailabilityWindow struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	PropertyID  int64     `json:"property_id"`
	DayOfWeek   int       `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	SlotMinutes int       `json:"slot_minutes"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateAvailabilityWindowDTO struct {
	PropertyID  int64  `json:"property_id" binding:"required"`
	DayOfWeek   int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	SlotMinutes int    `json:"slot_minutes"`
	IsAvailable *bool  `json:"is_available"`
}

type UpdateAvailabilityWindowDTO struct {
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	SlotMinutes *int    `json:"slot_minutes"`
	IsAvailable *bool   `json:"is_available"`
}

// TimeSlot — кандидат на время показа. Существует только в ответе
// на запрос доступности, в базе не хранится.
type TimeSlot struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

// DayAvailability — результат расчета слотов на дату. Degraded выставляется,
// когда занятые показы не удалось прочитать и слоты отданы без фильтрации.
type DayAvailability struct {
	Date     string     `json:"date"`
	Slots    []TimeSlot `json:"slots"`
	Degraded bool       `json:"degraded"`
}
