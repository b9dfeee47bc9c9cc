package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/service"
)

// @Summary Запись на показ
// @Description Покупатель записывается на свободный слот, время начала должно совпадать с началом слота
// @Tags Показы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateShowingDTO true "Объект, время начала и комментарий"
// @Success 201 {object} successResponseBody "Идентификатор показа"
// @Failure 400 {object} errorResponseBody "Слот недоступен или время некорректно"
// @Router /showings [post]
func (h *Handler) createShowing(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateShowingDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Showing.Create(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка записи на показ", zap.Error(err))
		errorResponse(c, http.StatusConflict, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Список показов
// @Description Возвращает показы, где пользователь участвует как покупатель или продавец
// @Tags Показы
// @Security ApiKeyAuth
// @Produce json
// @Param property_id query int false "ID объекта"
// @Param status query string false "Статус" Enums(pending, confirmed, completed, declined, cancelled)
// @Param role query string false "Роль в показе" Enums(buyer, seller)
// @Param date_from query string false "Начало периода YYYY-MM-DD"
// @Param date_to query string false "Конец периода YYYY-MM-DD"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Список показов"
// @Router /showings [get]
func (h *Handler) getShowings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var filter domain.ShowingFilter

	// Фильтр всегда привязан к пользователю, чужие показы не видны.
	if c.DefaultQuery("role", "buyer") == "seller" {
		filter.SellerID = &userID
	} else {
		filter.BuyerID = &userID
	}

	if propertyStr := c.Query("property_id"); propertyStr != "" {
		propertyID, err := strconv.ParseInt(propertyStr, 10, 64)
		if err == nil {
			filter.PropertyID = &propertyID
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.ShowingStatus(statusStr)
		filter.Status = &status
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateFrom, time.Local)
		if err == nil {
			filter.StartDate = &parsed
		}
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateTo, time.Local)
		if err == nil {
			end := parsed.AddDate(0, 0, 1)
			filter.EndDate = &end
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	showings, total, err := h.services.Showing.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка получения списка показов", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, showings, total, page, limit)
}

// @Summary Показ по ID
// @Tags Показы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID показа"
// @Success 200 {object} domain.Showing "Показ"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Показ не найден"
// @Router /showings/{id} [get]
func (h *Handler) getShowingByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID показа")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	showing, err := h.services.Showing.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "показ не найден")
		return
	}

	role, _ := getUserRole(c)
	if showing.BuyerID != userID && showing.SellerID != userID && role != domain.UserRoleAdmin {
		forbiddenResponse(c)
		return
	}

	successResponse(c, http.StatusOK, showing)
}

type changeShowingStatusInput struct {
	Status domain.ShowingStatus `json:"status" binding:"required,oneof=confirmed completed declined cancelled"`
}

// @Summary Смена статуса показа
// @Description Продавец подтверждает, отклоняет или завершает показ, покупатель может отменить запись
// @Tags Показы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID показа"
// @Param input body changeShowingStatusInput true "Новый статус"
// @Success 200 {object} messageResponseType "Статус изменен"
// @Failure 400 {object} errorResponseBody "Недопустимый переход статуса"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /showings/{id}/status [put]
func (h *Handler) changeShowingStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID показа")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input changeShowingStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Showing.ChangeStatus(c.Request.Context(), id, userID, input.Status); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка смены статуса показа", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "статус изменен")
}
