package domain

import (
	"time"
)

type ShowingStatus string

const (
	ShowingStatusPending   ShowingStatus = "pending"
	ShowingStatusConfirmed ShowingStatus = "confirmed"
	ShowingStatusCompleted ShowingStatus = "completed"
	ShowingStatusDeclined  ShowingStatus = "declined"
	ShowingStatusCancelled ShowingStatus = "cancelled"
)

// Occupies сообщает, занимает ли показ слот времени. Отклоненные и
// отмененные показы слот не держат.
func (s ShowingStatus) Occupies() bool {
	return s != ShowingStatusDeclined && s != ShowingStatusCancelled
}

type Showing struct {
	ID         int64         `json:"id"`
	PropertyID int64         `json:"property_id"`
	BuyerID    int64         `json:"buyer_id"`
	SellerID   int64         `json:"seller_id"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Status     ShowingStatus `json:"status"`
	Note       string        `json:"note,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	PropertyTitle string `json:"property_title,omitempty"`
	BuyerName     string `json:"buyer_name,omitempty"`
	BuyerPhone    string `json:"buyer_phone,omitempty"`
	SellerName    string `json:"seller_name,omitempty"`
}

type CreateShowingDTO struct {
	PropertyID int64     `json:"property_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	Note       string    `json:"note"`
}

type UpdateShowingDTO struct {
	Status    *ShowingStatus `json:"status" binding:"omitempty,oneof=pending confirmed completed declined cancelled"`
	StartTime *time.Time     `json:"start_time"`
	Note      *string        `json:"note"`
}

type ShowingFilter struct {
	PropertyID *int64         `json:"property_id"`
	BuyerID    *int64         `json:"buyer_id"`
	SellerID   *int64         `json:"seller_id"`
	Status     *ShowingStatus `json:"status"`
	StartDate  *time.Time     `json:"start_date"`
	EndDate    *time.Time     `json:"end_date"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}
