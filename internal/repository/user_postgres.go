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

var ErrNotFound = errors.New("запись не найдена")

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

func (r *UserRepo) Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, phone, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.FirstName,
		dto.LastName,
		dto.Email,
		dto.Phone,
		dto.Password,
		dto.Role,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	return id, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getByField(ctx, "id", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByField(ctx, "email", email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.getByField(ctx, "phone", phone)
}

func (r *UserRepo) getByField(ctx context.Context, field string, value interface{}) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT id, first_name, last_name, email, phone, password_hash, role, two_factor_enabled, is_active, created_at, updated_at
		FROM users
		WHERE %s = $1
	`, field)

	var user domain.User
	err := r.db.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.TwoFactorEnabled,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("пользователь не найден: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.FirstName != nil {
		updateFields = append(updateFields, fmt.Sprintf("first_name = $%d", argCount))
		args = append(args, *dto.FirstName)
		argCount++
	}

	if dto.LastName != nil {
		updateFields = append(updateFields, fmt.Sprintf("last_name = $%d", argCount))
		args = append(args, *dto.LastName)
		argCount++
	}

	if dto.Email != nil {
		updateFields = append(updateFields, fmt.Sprintf("email = $%d", argCount))
		args = append(args, *dto.Email)
		argCount++
	}

	if dto.Phone != nil {
		updateFields = append(updateFields, fmt.Sprintf("phone = $%d", argCount))
		args = append(args, *dto.Phone)
		argCount++
	}

	if dto.IsActive != nil {
		updateFields = append(updateFields, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *dto.IsActive)
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
		UPDATE users
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}

	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления пароля: %w", err)
	}

	return nil
}

func (r *UserRepo) SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error {
	query := `
		UPDATE users
		SET two_factor_enabled = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, enabled, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка изменения настройки 2FA: %w", err)
	}

	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET is_active = false, updated_at = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка деактивации пользователя: %w", err)
	}

	return nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, password_hash, role, two_factor_enabled, is_active, created_at, updated_at
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Phone,
			&user.PasswordHash,
			&user.Role,
			&user.TwoFactorEnabled,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки пользователя: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return users, nil
}
