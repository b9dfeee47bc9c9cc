package domain

import (
	"time"
)

type Document struct {
	ID          int64     `json:"id"`
	PropertyID  int64     `json:"property_id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	FileURL     string    `json:"file_url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

type SignatureRequestStatus string

const (
	SignatureRequestStatusPending  SignatureRequestStatus = "pending"
	SignatureRequestStatusSigned   SignatureRequestStatus = "signed"
	SignatureRequestStatusDeclined SignatureRequestStatus = "declined"
)

// SignatureRequest — запрос на подписание документа. Подписант получает
// ссылку с токеном и подтверждает или отклоняет подписание по ней.
type SignatureRequest struct {
	ID          int64                  `json:"id"`
	DocumentID  int64                  `json:"document_id"`
	RequesterID int64                  `json:"requester_id"`
	SignerEmail string                 `json:"signer_email"`
	SignerName  string                 `json:"signer_name"`
	Token       string                 `json:"-"`
	Status      SignatureRequestStatus `json:"status"`
	SignedAt    *time.Time             `json:"signed_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type CreateSignatureRequestDTO struct {
	DocumentID  int64  `json:"document_id" binding:"required"`
	SignerEmail string `json:"signer_email" binding:"required,email"`
	SignerName  string `json:"signer_name" binding:"required"`
}
