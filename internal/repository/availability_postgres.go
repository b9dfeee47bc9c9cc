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

type AvailabilityRepo struct {
	db *pgxpool.Pool
}

func NewAvailabilityRepository(db *pgxpool.Pool) *AvailabilityRepo {
	return &AvailabilityRepo{
		db: db,
	}
}

func (r *AvailabilityRepo) CreateWindow(ctx context.Context, sellerID int64, dto domain.CreateAvailabilityWindowDTO) (int64, error) {
	isAvailable := true
	if dto.IsAvailable != nil {
		isAvailable = *dto.IsAvailable
	}

	slotMinutes := dto.SlotMinutes
	if slotMinutes == 0 {
		slotMinutes = 60
	}

	query := `
		INSERT INTO availability_windows (seller_id, property_id, day_of_week, start_time, end_time, slot_minutes, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (seller_id, property_id, day_of_week)
		DO UPDATE SET start_time = $4, end_time = $5, slot_minutes = $6, is_available = $7, updated_at = $8
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		sellerID,
		dto.PropertyID,
		dto.DayOfWeek,
		dto.StartTime,
		dto.EndTime,
		slotMinutes,
		isAvailable,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения окна доступности: %w", err)
	}

	return id, nil
}

func (r *AvailabilityRepo) GetWindowByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error) {
	query := `
		SELECT id, seller_id, property_id, day_of_week, start_time, end_time, slot_minutes, is_available, created_at, updated_at
		FROM availability_windows
		WHERE id = $1
	`

	var window domain.AvailabilityWindow
	err := r.db.QueryRow(ctx, query, id).Scan(
		&window.ID,
		&window.SellerID,
		&window.PropertyID,
		&window.DayOfWeek,
		&window.StartTime,
		&window.EndTime,
		&window.SlotMinutes,
		&window.IsAvailable,
		&window.CreatedAt,
		&window.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("окно доступности с ID %d не найдено: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения окна доступности: %w", err)
	}

	return &window, nil
}

func (r *AvailabilityRepo) GetWindow(ctx context.Context, sellerID, propertyID int64, dayOfWeek int) (*domain.AvailabilityWindow, error) {
	query := `
		SELECT id, seller_id, property_id, day_of_week, start_time, end_time, slot_minutes, is_available, created_at, updated_at
		FROM availability_windows
		WHERE seller_id = $1 AND property_id = $2 AND day_of_week = $3
	`

	var window domain.AvailabilityWindow
	err := r.db.QueryRow(ctx, query, sellerID, propertyID, dayOfWeek).Scan(
		&window.ID,
		&window.SellerID,
		&window.PropertyID,
		&window.DayOfWeek,
		&window.StartTime,
		&window.EndTime,
		&window.SlotMinutes,
		&window.IsAvailable,
		&window.CreatedAt,
		&window.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения окна доступности: %w", err)
	}

	return &window, nil
}

func (r *AvailabilityRepo) ListWindowsByProperty(ctx context.Context, propertyID int64) ([]domain.AvailabilityWindow, error) {
	query := `
		SELECT id, seller_id, property_id, day_of_week, start_time, end_time, slot_minutes, is_available, created_at, updated_at
		FROM availability_windows
		WHERE property_id = $1
		ORDER BY day_of_week
	`

	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	windows := make([]domain.AvailabilityWindow, 0)
	for rows.Next() {
		var window domain.AvailabilityWindow
		if err := rows.Scan(
			&window.ID,
			&window.SellerID,
			&window.PropertyID,
			&window.DayOfWeek,
			&window.StartTime,
			&window.EndTime,
			&window.SlotMinutes,
			&window.IsAvailable,
			&window.CreatedAt,
			&window.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования окна доступности: %w", err)
		}
		windows = append(windows, window)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return windows, nil
}

func (r *AvailabilityRepo) UpdateWindow(ctx context.Context, id int64, dto domain.UpdateAvailabilityWindowDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.StartTime != nil {
		updateFields = append(updateFields, fmt.Sprintf("start_time = $%d", argCount))
		args = append(args, *dto.StartTime)
		argCount++
	}

	if dto.EndTime != nil {
		updateFields = append(updateFields, fmt.Sprintf("end_time = $%d", argCount))
		args = append(args, *dto.EndTime)
		argCount++
	}

	if dto.SlotMinutes != nil {
		updateFields = append(updateFields, fmt.Sprintf("slot_minutes = $%d", argCount))
		args = append(args, *dto.SlotMinutes)
		argCount++
	}

	if dto.IsAvailable != nil {
		updateFields = append(updateFields, fmt.Sprintf("is_available = $%d", argCount))
		args = append(args, *dto.IsAvailable)
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
		UPDATE availability_windows
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления окна доступности: %w", err)
	}

	return nil
}

func (r *AvailabilityRepo) DeleteWindow(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM availability_windows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления окна доступности: %w", err)
	}

	return nil
}
