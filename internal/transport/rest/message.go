package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/service"
)

// @Summary Создание переписки
// @Description Открывает переписку покупателя с продавцом объекта, повторный вызов возвращает существующую
// @Tags Сообщения
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateConversationDTO true "ID объекта"
// @Success 201 {object} domain.Conversation "Переписка"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /conversations [post]
func (h *Handler) createConversation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateConversationDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	conversation, err := h.services.Messaging.CreateConversation(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка создания переписки", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, conversation)
}

// @Summary Список переписок
// @Tags Сообщения
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} successResponseBody "Переписки пользователя"
// @Router /conversations [get]
func (h *Handler) getConversations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	conversations, err := h.services.Messaging.ListConversations(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ошибка получения переписок", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, conversations)
}

// @Summary Переписка по ID
// @Tags Сообщения
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID переписки"
// @Success 200 {object} domain.Conversation "Переписка"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Переписка не найдена"
// @Router /conversations/{id} [get]
func (h *Handler) getConversationByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID переписки")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	conversation, err := h.services.Messaging.GetConversation(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		notFoundResponse(c, "переписка не найдена")
		return
	}

	successResponse(c, http.StatusOK, conversation)
}

// @Summary Сообщения переписки
// @Tags Сообщения
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID переписки"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} successResponseBody "Сообщения от новых к старым"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /conversations/{id}/messages [get]
func (h *Handler) getMessages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID переписки")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	messages, err := h.services.Messaging.ListMessages(c.Request.Context(), id, userID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка получения сообщений", zap.Int64("conversationID", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, messages)
}

// @Summary Отправка сообщения
// @Description Собеседник получает уведомление по WebSocket, если подключен
// @Tags Сообщения
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.SendMessageDTO true "Переписка и текст"
// @Success 201 {object} domain.Message "Отправленное сообщение"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /conversations/messages [post]
func (h *Handler) sendMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.SendMessageDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	message, err := h.services.Messaging.SendMessage(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка отправки сообщения", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	// Уведомляем второго участника переписки.
	conversation, err := h.services.Messaging.GetConversation(c.Request.Context(), input.ConversationID, userID)
	if err == nil {
		recipientID := conversation.BuyerID
		if recipientID == userID {
			recipientID = conversation.SellerID
		}
		h.hub.Notify(recipientID, "message", message)
	}

	createdResponse(c, message)
}

// @Summary Отметка сообщений прочитанными
// @Tags Сообщения
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID переписки"
// @Success 200 {object} messageResponseType "Сообщения отмечены"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /conversations/{id}/read [post]
func (h *Handler) markMessagesRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID переписки")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if err := h.services.Messaging.MarkRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка отметки сообщений", zap.Int64("conversationID", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "сообщения отмечены прочитанными")
}

// @Summary Число непрочитанных сообщений
// @Tags Сообщения
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID переписки"
// @Success 200 {object} successResponseBody "Счетчик непрочитанных"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /conversations/{id}/unread [get]
func (h *Handler) getUnreadCount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID переписки")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	count, err := h.services.Messaging.CountUnread(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка подсчета непрочитанных", zap.Int64("conversationID", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"unread_count": count,
	})
}
