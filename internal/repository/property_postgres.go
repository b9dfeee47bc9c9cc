package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doma/internal/domain"
)

type PropertyRepo struct {
	db *pgxpool.Pool
}

func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepo {
	return &PropertyRepo{
		db: db,
	}
}

func (r *PropertyRepo) Create(ctx context.Context, sellerID int64, dto domain.CreatePropertyDTO) (int64, error) {
	query := `
		INSERT INTO properties (seller_id, title, description, type, address, city, postal_code, price, area, rooms, status, photo_urls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '{}', $12, $12)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		sellerID,
		dto.Title,
		dto.Description,
		dto.Type,
		dto.Address,
		dto.City,
		dto.PostalCode,
		dto.Price,
		dto.Area,
		dto.Rooms,
		domain.PropertyStatusActive,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания объекта недвижимости: %w", err)
	}

	return id, nil
}

func (r *PropertyRepo) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	query := `
		SELECT p.id, p.seller_id, p.title, p.description, p.type, p.address, p.city, p.postal_code,
		       p.price, p.area, p.rooms, p.status, p.photo_urls, p.created_at, p.updated_at,
		       u.first_name || ' ' || u.last_name AS seller_name, u.phone AS seller_phone
		FROM properties p
		JOIN users u ON p.seller_id = u.id
		WHERE p.id = $1
	`

	var property domain.Property
	err := r.db.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.SellerID,
		&property.Title,
		&property.Description,
		&property.Type,
		&property.Address,
		&property.City,
		&property.PostalCode,
		&property.Price,
		&property.Area,
		&property.Rooms,
		&property.Status,
		&property.PhotoURLs,
		&property.CreatedAt,
		&property.UpdatedAt,
		&property.SellerName,
		&property.SellerPhone,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("объект недвижимости с ID %d не найден: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения объекта недвижимости: %w", err)
	}

	return &property, nil
}

func (r *PropertyRepo) Update(ctx context.Context, id int64, dto domain.UpdatePropertyDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Title != nil {
		updateFields = append(updateFields, fmt.Sprintf("title = $%d", argCount))
		args = append(args, *dto.Title)
		argCount++
	}

	if dto.Description != nil {
		updateFields = append(updateFields, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *dto.Description)
		argCount++
	}

	if dto.Address != nil {
		updateFields = append(updateFields, fmt.Sprintf("address = $%d", argCount))
		args = append(args, *dto.Address)
		argCount++
	}

	if dto.City != nil {
		updateFields = append(updateFields, fmt.Sprintf("city = $%d", argCount))
		args = append(args, *dto.City)
		argCount++
	}

	if dto.PostalCode != nil {
		updateFields = append(updateFields, fmt.Sprintf("postal_code = $%d", argCount))
		args = append(args, *dto.PostalCode)
		argCount++
	}

	if dto.Price != nil {
		updateFields = append(updateFields, fmt.Sprintf("price = $%d", argCount))
		args = append(args, *dto.Price)
		argCount++
	}

	if dto.Area != nil {
		updateFields = append(updateFields, fmt.Sprintf("area = $%d", argCount))
		args = append(args, *dto.Area)
		argCount++
	}

	if dto.Rooms != nil {
		updateFields = append(updateFields, fmt.Sprintf("rooms = $%d", argCount))
		args = append(args, *dto.Rooms)
		argCount++
	}

	if dto.Status != nil {
		updateFields = append(updateFields, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *dto.Status)
		argCount++
	}

	if len(updateFields) == 0 {
		return nil
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE properties
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления объекта недвижимости: %w", err)
	}

	return nil
}

func (r *PropertyRepo) Delete(ctx context.Context, id int64) error {
	query := `
		UPDATE properties
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, domain.PropertyStatusWithdrawn, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка снятия объекта с публикации: %w", err)
	}

	return nil
}

func (r *PropertyRepo) buildFilter(filter domain.PropertyFilter, startArg int) ([]string, []interface{}, int) {
	var conditions []string
	var args []interface{}
	argCount := startArg

	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("p.seller_id = $%d", argCount))
		args = append(args, *filter.SellerID)
		argCount++
	}

	if filter.City != nil {
		conditions = append(conditions, fmt.Sprintf("p.city ILIKE $%d", argCount))
		args = append(args, *filter.City)
		argCount++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("p.type = $%d", argCount))
		args = append(args, *filter.Type)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", argCount))
		args = append(args, *filter.MinPrice)
		argCount++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", argCount))
		args = append(args, *filter.MaxPrice)
		argCount++
	}

	return conditions, args, argCount
}

func (r *PropertyRepo) List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	baseQuery := `
		SELECT p.id, p.seller_id, p.title, p.description, p.type, p.address, p.city, p.postal_code,
		       p.price, p.area, p.rooms, p.status, p.photo_urls, p.created_at, p.updated_at,
		       u.first_name || ' ' || u.last_name AS seller_name, u.phone AS seller_phone
		FROM properties p
		JOIN users u ON p.seller_id = u.id
	`

	conditions, args, _ := r.buildFilter(filter, 1)

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY p.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		var property domain.Property
		if err := rows.Scan(
			&property.ID,
			&property.SellerID,
			&property.Title,
			&property.Description,
			&property.Type,
			&property.Address,
			&property.City,
			&property.PostalCode,
			&property.Price,
			&property.Area,
			&property.Rooms,
			&property.Status,
			&property.PhotoURLs,
			&property.CreatedAt,
			&property.UpdatedAt,
			&property.SellerName,
			&property.SellerPhone,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки объекта: %w", err)
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return properties, nil
}

func (r *PropertyRepo) CountByFilter(ctx context.Context, filter domain.PropertyFilter) (int, error) {
	conditions, args, _ := r.buildFilter(filter, 1)

	query := "SELECT COUNT(*) FROM properties p"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета объектов: %w", err)
	}

	return count, nil
}

func (r *PropertyRepo) AddPhotoURL(ctx context.Context, id int64, url string) error {
	query := `
		UPDATE properties
		SET photo_urls = array_append(photo_urls, $1), updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, url, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка добавления фотографии: %w", err)
	}

	return nil
}

func (r *PropertyRepo) RemovePhotoURL(ctx context.Context, id int64, url string) error {
	query := `
		UPDATE properties
		SET photo_urls = array_remove(photo_urls, $1), updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, url, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления фотографии: %w", err)
	}

	return nil
}
