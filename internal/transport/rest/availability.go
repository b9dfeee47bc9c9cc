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

// @Summary Свободные слоты показов
// @Description Возвращает слоты на дату: окно продавца или окно по умолчанию, занятые слоты помечены. При недоступности данных о показах выставляется флаг degraded
// @Tags Доступность
// @Produce json
// @Param id path int true "ID объекта"
// @Param date query string true "Дата в формате YYYY-MM-DD"
// @Success 200 {object} domain.DayAvailability "Слоты на дату"
// @Failure 400 {object} errorResponseBody "Некорректные параметры"
// @Failure 404 {object} errorResponseBody "Объект не найден"
// @Router /properties/{id}/slots [get]
func (h *Handler) getPropertySlots(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	property, err := h.services.Property.GetByID(c.Request.Context(), propertyID)
	if err != nil {
		notFoundResponse(c, "объект не найден")
		return
	}

	date := c.Query("date")

	day, err := h.services.Availability.ComputeSlots(c.Request.Context(), propertyID, property.SellerID, date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка расчета слотов", zap.Int64("propertyID", propertyID), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "ошибка расчета слотов")
		return
	}

	successResponse(c, http.StatusOK, day)
}

// @Summary Окна доступности объекта
// @Tags Доступность
// @Produce json
// @Param id path int true "ID объекта"
// @Success 200 {object} successResponseBody "Окна по дням недели"
// @Router /properties/{id}/windows [get]
func (h *Handler) getPropertyWindows(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	windows, err := h.services.Availability.ListWindows(c.Request.Context(), propertyID)
	if err != nil {
		h.logger.Error("ошибка получения окон доступности", zap.Int64("propertyID", propertyID), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, windows)
}

// @Summary Создание окна доступности
// @Description Продавец задает окно показов для объекта на день недели
// @Tags Доступность
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateAvailabilityWindowDTO true "Параметры окна"
// @Success 201 {object} successResponseBody "Идентификатор окна"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /availability [post]
func (h *Handler) createAvailabilityWindow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateAvailabilityWindowDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Availability.CreateWindow(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка создания окна доступности", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновление окна доступности
// @Tags Доступность
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID окна"
// @Param input body domain.UpdateAvailabilityWindowDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType "Окно обновлено"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /availability/{id} [put]
func (h *Handler) updateAvailabilityWindow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID окна")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.UpdateAvailabilityWindowDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Availability.UpdateWindow(c.Request.Context(), id, userID, input); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка обновления окна доступности", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "окно обновлено")
}

// @Summary Удаление окна доступности
// @Tags Доступность
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID окна"
// @Success 204 {object} nil "Окно удалено"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /availability/{id} [delete]
func (h *Handler) deleteAvailabilityWindow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID окна")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if err := h.services.Availability.DeleteWindow(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка удаления окна доступности", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
