package domain

import (
	"time"
)

// Conversation — переписка покупателя и продавца по конкретному объекту.
type Conversation struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	BuyerID    int64     `json:"buyer_id"`
	SellerID   int64     `json:"seller_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	PropertyTitle string `json:"property_title,omitempty"`
	BuyerName     string `json:"buyer_name,omitempty"`
	SellerName    string `json:"seller_name,omitempty"`
	UnreadCount   int    `json:"unread_count,omitempty"`
}

type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	Content        string     `json:"content"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	SenderName string `json:"sender_name,omitempty"`
}

type CreateConversationDTO struct {
	PropertyID int64 `json:"property_id" binding:"required"`
}

type SendMessageDTO struct {
	ConversationID int64  `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
}
