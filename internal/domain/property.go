package domain

import (
	"time"
)

type PropertyStatus string

const (
	PropertyStatusActive    PropertyStatus = "active"
	PropertyStatusPending   PropertyStatus = "pending"
	PropertyStatusSold      PropertyStatus = "sold"
	PropertyStatusWithdrawn PropertyStatus = "withdrawn"
)

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeTownhouse PropertyType = "townhouse"
	PropertyTypeLand      PropertyType = "land"
)

type Property struct {
	ID          int64          `json:"id"`
	SellerID    int64          `json:"seller_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        PropertyType   `json:"type"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	PostalCode  string         `json:"postal_code"`
	Price       float64        `json:"price"`
	Area        float64        `json:"area"`
	Rooms       int            `json:"rooms"`
	Status      PropertyStatus `json:"status"`
	PhotoURLs   []string       `json:"photo_urls"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	SellerName  string `json:"seller_name,omitempty"`
	SellerPhone string `json:"seller_phone,omitempty"`
}

type CreatePropertyDTO struct {
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	Type        PropertyType `json:"type" binding:"required,oneof=apartment house townhouse land"`
	Address     string       `json:"address" binding:"required"`
	City        string       `json:"city" binding:"required"`
	PostalCode  string       `json:"postal_code"`
	Price       float64      `json:"price" binding:"required,gt=0"`
	Area        float64      `json:"area" binding:"gte=0"`
	Rooms       int          `json:"rooms" binding:"gte=0"`
}

type UpdatePropertyDTO struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Address     *string         `json:"address"`
	City        *string         `json:"city"`
	PostalCode  *string         `json:"postal_code"`
	Price       *float64        `json:"price" binding:"omitempty,gt=0"`
	Area        *float64        `json:"area"`
	Rooms       *int            `json:"rooms"`
	Status      *PropertyStatus `json:"status" binding:"omitempty,oneof=active pending sold withdrawn"`
}

type PropertyFilter struct {
	SellerID *int64          `json:"seller_id"`
	City     *string         `json:"city"`
	Type     *PropertyType   `json:"type"`
	Status   *PropertyStatus `json:"status"`
	MinPrice *float64        `json:"min_price"`
	MaxPrice *float64        `json:"max_price"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}
