package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doma/internal/domain"
)

type AuthRepo struct {
	db *pgxpool.Pool
}

func NewAuthRepository(db *pgxpool.Pool) *AuthRepo {
	return &AuthRepo{
		db: db,
	}
}

func (r *AuthRepo) CreateSession(ctx context.Context, session domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token, user_agent, ip, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IP,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}

	return nil
}

func (r *AuthRepo) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip, expires_at, created_at
		FROM sessions
		WHERE refresh_token = $1
	`

	var session domain.Session
	err := r.db.QueryRow(ctx, query, refreshToken).Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.UserAgent,
		&session.IP,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("сессия не найдена: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения сессии: %w", err)
	}

	return &session, nil
}

func (r *AuthRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}

	return nil
}

func (r *AuthRepo) DeleteSessionsByUserID(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления сессий пользователя: %w", err)
	}

	return nil
}

func (r *AuthRepo) ReplaceBackupCodes(ctx context.Context, userID int64, codeHashes []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM two_factor_backup_codes WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления старых резервных кодов: %w", err)
	}

	for _, hash := range codeHashes {
		_, err = tx.Exec(ctx,
			"INSERT INTO two_factor_backup_codes (user_id, code_hash, created_at) VALUES ($1, $2, now())",
			userID, hash,
		)
		if err != nil {
			return fmt.Errorf("ошибка сохранения резервного кода: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return nil
}

func (r *AuthRepo) GetUnusedBackupCodes(ctx context.Context, userID int64) ([]domain.TwoFactorBackupCode, error) {
	query := `
		SELECT id, user_id, code_hash, used_at, created_at
		FROM two_factor_backup_codes
		WHERE user_id = $1 AND used_at IS NULL
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения резервных кодов: %w", err)
	}
	defer rows.Close()

	var codes []domain.TwoFactorBackupCode
	for rows.Next() {
		var code domain.TwoFactorBackupCode
		if err := rows.Scan(&code.ID, &code.UserID, &code.CodeHash, &code.UsedAt, &code.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования резервного кода: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return codes, nil
}

func (r *AuthRepo) MarkBackupCodeUsed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "UPDATE two_factor_backup_codes SET used_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка отметки использованного кода: %w", err)
	}

	return nil
}

func (r *AuthRepo) DeleteBackupCodes(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM two_factor_backup_codes WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления резервных кодов: %w", err)
	}

	return nil
}
