package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/repository"
	"doma/pkg/validator"
)

const maxMessageLength = 4000

type MessagingServiceImpl struct {
	repo         repository.ConversationRepository
	propertyRepo repository.PropertyRepository
	logger       *zap.Logger
}

func NewMessagingService(repo repository.ConversationRepository, propertyRepo repository.PropertyRepository, logger *zap.Logger) *MessagingServiceImpl {
	return &MessagingServiceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		logger:       logger,
	}
}

// CreateConversation открывает переписку покупателя с продавцом объекта.
// Повторный вызов возвращает уже существующую переписку.
func (s *MessagingServiceImpl) CreateConversation(ctx context.Context, buyerID int64, dto domain.CreateConversationDTO) (*domain.Conversation, error) {
	property, err := s.propertyRepo.GetByID(ctx, dto.PropertyID)
	if err != nil {
		s.logger.Error("объект не найден при создании переписки", zap.Int64("propertyID", dto.PropertyID), zap.Error(err))
		return nil, fmt.Errorf("%w: объект не найден", ErrInvalidArgument)
	}

	if property.SellerID == buyerID {
		return nil, fmt.Errorf("%w: нельзя открыть переписку с самим собой", ErrInvalidArgument)
	}

	existing, err := s.repo.GetConversationByParticipants(ctx, dto.PropertyID, buyerID)
	if err == nil && existing != nil {
		return existing, nil
	}

	conversation := domain.Conversation{
		PropertyID: dto.PropertyID,
		BuyerID:    buyerID,
		SellerID:   property.SellerID,
	}

	id, err := s.repo.CreateConversation(ctx, conversation)
	if err != nil {
		s.logger.Error("ошибка создания переписки", zap.Int64("propertyID", dto.PropertyID), zap.Error(err))
		return nil, errors.New("ошибка создания переписки")
	}

	created, err := s.repo.GetConversationByID(ctx, id)
	if err != nil {
		s.logger.Error("переписка не найдена после создания", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка создания переписки")
	}

	return created, nil
}

func (s *MessagingServiceImpl) GetConversation(ctx context.Context, id, userID int64) (*domain.Conversation, error) {
	conversation, err := s.repo.GetConversationByID(ctx, id)
	if err != nil {
		s.logger.Error("переписка не найдена", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("переписка не найдена")
	}

	if conversation.BuyerID != userID && conversation.SellerID != userID {
		return nil, ErrForbidden
	}

	return conversation, nil
}

func (s *MessagingServiceImpl) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	conversations, err := s.repo.ListConversationsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения списка переписок", zap.Int64("userID", userID), zap.Error(err))
		return nil, errors.New("ошибка получения списка переписок")
	}
	return conversations, nil
}

func (s *MessagingServiceImpl) SendMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.Message, error) {
	content := strings.TrimSpace(validator.SanitizeString(dto.Content))
	if content == "" {
		return nil, fmt.Errorf("%w: пустое сообщение", ErrInvalidArgument)
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: сообщение длиннее %d символов", ErrInvalidArgument, maxMessageLength)
	}
	dto.Content = content

	conversation, err := s.repo.GetConversationByID(ctx, dto.ConversationID)
	if err != nil {
		s.logger.Error("переписка не найдена", zap.Int64("id", dto.ConversationID), zap.Error(err))
		return nil, errors.New("переписка не найдена")
	}

	if conversation.BuyerID != senderID && conversation.SellerID != senderID {
		return nil, ErrForbidden
	}

	message, err := s.repo.CreateMessage(ctx, senderID, dto)
	if err != nil {
		s.logger.Error("ошибка отправки сообщения", zap.Int64("conversationID", dto.ConversationID), zap.Error(err))
		return nil, errors.New("ошибка отправки сообщения")
	}

	return message, nil
}

func (s *MessagingServiceImpl) ListMessages(ctx context.Context, conversationID, userID int64, limit, offset int) ([]domain.Message, error) {
	conversation, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		s.logger.Error("переписка не найдена", zap.Int64("id", conversationID), zap.Error(err))
		return nil, errors.New("переписка не найдена")
	}

	if conversation.BuyerID != userID && conversation.SellerID != userID {
		return nil, ErrForbidden
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.repo.ListMessages(ctx, conversationID, limit, offset)
	if err != nil {
		s.logger.Error("ошибка получения сообщений", zap.Int64("conversationID", conversationID), zap.Error(err))
		return nil, errors.New("ошибка получения сообщений")
	}

	return messages, nil
}

func (s *MessagingServiceImpl) MarkRead(ctx context.Context, conversationID, readerID int64) error {
	conversation, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		s.logger.Error("переписка не найдена", zap.Int64("id", conversationID), zap.Error(err))
		return errors.New("переписка не найдена")
	}

	if conversation.BuyerID != readerID && conversation.SellerID != readerID {
		return ErrForbidden
	}

	if err := s.repo.MarkMessagesRead(ctx, conversationID, readerID); err != nil {
		s.logger.Error("ошибка отметки сообщений прочитанными", zap.Int64("conversationID", conversationID), zap.Error(err))
		return errors.New("ошибка отметки сообщений прочитанными")
	}

	return nil
}

func (s *MessagingServiceImpl) CountUnread(ctx context.Context, conversationID, userID int64) (int, error) {
	conversation, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		s.logger.Error("переписка не найдена", zap.Int64("id", conversationID), zap.Error(err))
		return 0, errors.New("переписка не найдена")
	}

	if conversation.BuyerID != userID && conversation.SellerID != userID {
		return 0, ErrForbidden
	}

	count, err := s.repo.CountUnread(ctx, conversationID, userID)
	if err != nil {
		s.logger.Error("ошибка подсчета непрочитанных сообщений", zap.Int64("conversationID", conversationID), zap.Error(err))
		return 0, errors.New("ошибка подсчета непрочитанных сообщений")
	}

	return count, nil
}
