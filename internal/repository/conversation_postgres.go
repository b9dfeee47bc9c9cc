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

type ConversationRepo struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{
		db: db,
	}
}

func (r *ConversationRepo) CreateConversation(ctx context.Context, conversation domain.Conversation) (int64, error) {
	query := `
		INSERT INTO conversations (property_id, buyer_id, seller_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		conversation.PropertyID,
		conversation.BuyerID,
		conversation.SellerID,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания переписки: %w", err)
	}

	return id, nil
}

const conversationSelect = `
	SELECT c.id, c.property_id, c.buyer_id, c.seller_id, c.created_at, c.updated_at,
	       p.title AS property_title,
	       b.first_name || ' ' || b.last_name AS buyer_name,
	       s.first_name || ' ' || s.last_name AS seller_name
	FROM conversations c
	JOIN properties p ON c.property_id = p.id
	JOIN users b ON c.buyer_id = b.id
	JOIN users s ON c.seller_id = s.id
`

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := row.Scan(
		&conversation.ID,
		&conversation.PropertyID,
		&conversation.BuyerID,
		&conversation.SellerID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
		&conversation.PropertyTitle,
		&conversation.BuyerName,
		&conversation.SellerName,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepo) GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	conversation, err := scanConversation(r.db.QueryRow(ctx, conversationSelect+" WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("переписка с ID %d не найдена: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения переписки: %w", err)
	}

	return conversation, nil
}

func (r *ConversationRepo) GetConversationByParticipants(ctx context.Context, propertyID, buyerID int64) (*domain.Conversation, error) {
	conversation, err := scanConversation(r.db.QueryRow(ctx,
		conversationSelect+" WHERE c.property_id = $1 AND c.buyer_id = $2", propertyID, buyerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения переписки: %w", err)
	}

	return conversation, nil
}

func (r *ConversationRepo) ListConversationsByUser(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	query := conversationSelect + `
		WHERE c.buyer_id = $1 OR c.seller_id = $1
		ORDER BY c.updated_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	conversations := make([]domain.Conversation, 0)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки переписки: %w", err)
		}
		conversations = append(conversations, *conversation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return conversations, nil
}

func (r *ConversationRepo) CreateMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.Message, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO messages (conversation_id, sender_id, content, is_read, created_at)
		VALUES ($1, $2, $3, false, $4)
		RETURNING id, conversation_id, sender_id, content, is_read, read_at, created_at
	`

	var message domain.Message
	err = tx.QueryRow(ctx, query,
		dto.ConversationID,
		senderID,
		dto.Content,
		time.Now(),
	).Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.Content,
		&message.IsRead,
		&message.ReadAt,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения сообщения: %w", err)
	}

	_, err = tx.Exec(ctx, "UPDATE conversations SET updated_at = $1 WHERE id = $2", time.Now(), dto.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления переписки: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return &message, nil
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.is_read, m.read_at, m.created_at,
		       u.first_name || ' ' || u.last_name AS sender_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&message.SenderID,
			&message.Content,
			&message.IsRead,
			&message.ReadAt,
			&message.CreatedAt,
			&message.SenderName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки сообщения: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return messages, nil
}

func (r *ConversationRepo) MarkMessagesRead(ctx context.Context, conversationID, readerID int64) error {
	query := `
		UPDATE messages
		SET is_read = true, read_at = $1
		WHERE conversation_id = $2 AND sender_id != $3 AND is_read = false
	`

	_, err := r.db.Exec(ctx, query, time.Now(), conversationID, readerID)
	if err != nil {
		return fmt.Errorf("ошибка отметки сообщений прочитанными: %w", err)
	}

	return nil
}

func (r *ConversationRepo) CountUnread(ctx context.Context, conversationID, userID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE conversation_id = $1 AND sender_id != $2 AND is_read = false
	`

	var count int
	err := r.db.QueryRow(ctx, query, conversationID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета непрочитанных сообщений: %w", err)
	}

	return count, nil
}
