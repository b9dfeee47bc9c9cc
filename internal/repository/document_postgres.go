package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doma/internal/domain"
)

type DocumentRepo struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{
		db: db,
	}
}

func (r *DocumentRepo) CreateDocument(ctx context.Context, document domain.Document) (int64, error) {
	query := `
		INSERT INTO documents (property_id, owner_id, name, file_url, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		document.PropertyID,
		document.OwnerID,
		document.Name,
		document.FileURL,
		document.ContentType,
		document.Size,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения документа: %w", err)
	}

	return id, nil
}

func (r *DocumentRepo) GetDocumentByID(ctx context.Context, id int64) (*domain.Document, error) {
	query := `
		SELECT id, property_id, owner_id, name, file_url, content_type, size, created_at
		FROM documents
		WHERE id = $1
	`

	var document domain.Document
	err := r.db.QueryRow(ctx, query, id).Scan(
		&document.ID,
		&document.PropertyID,
		&document.OwnerID,
		&document.Name,
		&document.FileURL,
		&document.ContentType,
		&document.Size,
		&document.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("документ с ID %d не найден: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения документа: %w", err)
	}

	return &document, nil
}

func (r *DocumentRepo) ListByProperty(ctx context.Context, propertyID int64) ([]domain.Document, error) {
	query := `
		SELECT id, property_id, owner_id, name, file_url, content_type, size, created_at
		FROM documents
		WHERE property_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	documents := make([]domain.Document, 0)
	for rows.Next() {
		var document domain.Document
		if err := rows.Scan(
			&document.ID,
			&document.PropertyID,
			&document.OwnerID,
			&document.Name,
			&document.FileURL,
			&document.ContentType,
			&document.Size,
			&document.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки документа: %w", err)
		}
		documents = append(documents, document)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return documents, nil
}

func (r *DocumentRepo) DeleteDocument(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления документа: %w", err)
	}

	return nil
}

func (r *DocumentRepo) CreateSignatureRequest(ctx context.Context, request domain.SignatureRequest) (int64, error) {
	query := `
		INSERT INTO signature_requests (document_id, requester_id, signer_email, signer_name, token, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		request.DocumentID,
		request.RequesterID,
		request.SignerEmail,
		request.SignerName,
		request.Token,
		request.Status,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания запроса на подписание: %w", err)
	}

	return id, nil
}

func (r *DocumentRepo) GetSignatureRequestByToken(ctx context.Context, token string) (*domain.SignatureRequest, error) {
	query := `
		SELECT id, document_id, requester_id, signer_email, signer_name, token, status, signed_at, created_at
		FROM signature_requests
		WHERE token = $1
	`

	var request domain.SignatureRequest
	err := r.db.QueryRow(ctx, query, token).Scan(
		&request.ID,
		&request.DocumentID,
		&request.RequesterID,
		&request.SignerEmail,
		&request.SignerName,
		&request.Token,
		&request.Status,
		&request.SignedAt,
		&request.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запрос на подписание не найден: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения запроса на подписание: %w", err)
	}

	return &request, nil
}

func (r *DocumentRepo) ListSignatureRequestsByDocument(ctx context.Context, documentID int64) ([]domain.SignatureRequest, error) {
	query := `
		SELECT id, document_id, requester_id, signer_email, signer_name, token, status, signed_at, created_at
		FROM signature_requests
		WHERE document_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.SignatureRequest, 0)
	for rows.Next() {
		var request domain.SignatureRequest
		if err := rows.Scan(
			&request.ID,
			&request.DocumentID,
			&request.RequesterID,
			&request.SignerEmail,
			&request.SignerName,
			&request.Token,
			&request.Status,
			&request.SignedAt,
			&request.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования запроса на подписание: %w", err)
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return requests, nil
}

func (r *DocumentRepo) UpdateSignatureRequestStatus(ctx context.Context, id int64, status domain.SignatureRequestStatus, signedAt *time.Time) error {
	query := `
		UPDATE signature_requests
		SET status = $1, signed_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, status, signedAt, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса подписания: %w", err)
	}

	return nil
}
