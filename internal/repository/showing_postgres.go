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

type ShowingRepo struct {
	db *pgxpool.Pool
}

func NewShowingRepository(db *pgxpool.Pool) *ShowingRepo {
	return &ShowingRepo{
		db: db,
	}
}

func (r *ShowingRepo) Create(ctx context.Context, buyerID int64, dto domain.CreateShowingDTO, sellerID int64, endTime time.Time) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	checkQuery := `
		SELECT COUNT(*)
		FROM showings
		WHERE property_id = $1
		AND start_time < $3 AND end_time > $2
		AND status NOT IN ('declined', 'cancelled')
	`

	var count int
	err = tx.QueryRow(ctx, checkQuery, dto.PropertyID, dto.StartTime, endTime).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки доступности слота: %w", err)
	}

	if count > 0 {
		return 0, errors.New("выбранный слот времени уже занят")
	}

	query := `
		INSERT INTO showings (property_id, buyer_id, seller_id, start_time, end_time, status, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`

	var id int64
	err = tx.QueryRow(ctx, query,
		dto.PropertyID,
		buyerID,
		sellerID,
		dto.StartTime,
		endTime,
		domain.ShowingStatusPending,
		dto.Note,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания показа: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

const showingSelect = `
	SELECT s.id, s.property_id, s.buyer_id, s.seller_id, s.start_time, s.end_time, s.status, s.note, s.created_at, s.updated_at,
	       p.title AS property_title,
	       b.first_name || ' ' || b.last_name AS buyer_name, b.phone AS buyer_phone,
	       sl.first_name || ' ' || sl.last_name AS seller_name
	FROM showings s
	JOIN properties p ON s.property_id = p.id
	JOIN users b ON s.buyer_id = b.id
	JOIN users sl ON s.seller_id = sl.id
`

func scanShowing(row pgx.Row) (*domain.Showing, error) {
	var showing domain.Showing
	err := row.Scan(
		&showing.ID,
		&showing.PropertyID,
		&showing.BuyerID,
		&showing.SellerID,
		&showing.StartTime,
		&showing.EndTime,
		&showing.Status,
		&showing.Note,
		&showing.CreatedAt,
		&showing.UpdatedAt,
		&showing.PropertyTitle,
		&showing.BuyerName,
		&showing.BuyerPhone,
		&showing.SellerName,
	)
	if err != nil {
		return nil, err
	}
	return &showing, nil
}

func (r *ShowingRepo) GetByID(ctx context.Context, id int64) (*domain.Showing, error) {
	showing, err := scanShowing(r.db.QueryRow(ctx, showingSelect+" WHERE s.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("показ с ID %d не найден: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения показа: %w", err)
	}

	return showing, nil
}

func (r *ShowingRepo) Update(ctx context.Context, id int64, dto domain.UpdateShowingDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Status != nil {
		updateFields = append(updateFields, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *dto.Status)
		argCount++
	}

	if dto.StartTime != nil {
		updateFields = append(updateFields, fmt.Sprintf("start_time = $%d", argCount))
		args = append(args, *dto.StartTime)
		argCount++

		updateFields = append(updateFields, fmt.Sprintf("end_time = $%d", argCount))
		args = append(args, dto.StartTime.Add(time.Hour))
		argCount++
	}

	if dto.Note != nil {
		updateFields = append(updateFields, fmt.Sprintf("note = $%d", argCount))
		args = append(args, *dto.Note)
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
		UPDATE showings
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления показа: %w", err)
	}

	return nil
}

func (r *ShowingRepo) buildFilter(filter domain.ShowingFilter) ([]string, []interface{}, int) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.PropertyID != nil {
		conditions = append(conditions, fmt.Sprintf("s.property_id = $%d", argCount))
		args = append(args, *filter.PropertyID)
		argCount++
	}

	if filter.BuyerID != nil {
		conditions = append(conditions, fmt.Sprintf("s.buyer_id = $%d", argCount))
		args = append(args, *filter.BuyerID)
		argCount++
	}

	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("s.seller_id = $%d", argCount))
		args = append(args, *filter.SellerID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.start_time >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.start_time <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	return conditions, args, argCount
}

func (r *ShowingRepo) List(ctx context.Context, filter domain.ShowingFilter) ([]domain.Showing, error) {
	conditions, args, _ := r.buildFilter(filter)

	query := showingSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY s.start_time DESC"

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

	showings := make([]domain.Showing, 0)
	for rows.Next() {
		showing, err := scanShowing(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки показа: %w", err)
		}
		showings = append(showings, *showing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return showings, nil
}

func (r *ShowingRepo) CountByFilter(ctx context.Context, filter domain.ShowingFilter) (int, error) {
	conditions, args, _ := r.buildFilter(filter)

	query := "SELECT COUNT(*) FROM showings s"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета показов: %w", err)
	}

	return count, nil
}

func (r *ShowingRepo) GetBookedForDay(ctx context.Context, propertyID, sellerID int64, dayStart, dayEnd time.Time) ([]domain.Showing, error) {
	query := `
		SELECT id, property_id, buyer_id, seller_id, start_time, end_time, status, note, created_at, updated_at
		FROM showings
		WHERE property_id = $1 AND seller_id = $2
		AND start_time >= $3 AND start_time < $4
		AND status NOT IN ('declined', 'cancelled')
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, propertyID, sellerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения занятых показов: %w", err)
	}
	defer rows.Close()

	showings := make([]domain.Showing, 0)
	for rows.Next() {
		var showing domain.Showing
		if err := rows.Scan(
			&showing.ID,
			&showing.PropertyID,
			&showing.BuyerID,
			&showing.SellerID,
			&showing.StartTime,
			&showing.EndTime,
			&showing.Status,
			&showing.Note,
			&showing.CreatedAt,
			&showing.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки показа: %w", err)
		}
		showings = append(showings, showing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return showings, nil
}
