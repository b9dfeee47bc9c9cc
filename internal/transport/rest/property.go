package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/service"
)

const maxUploadSize = 10 << 20 // 10 МБ

// @Summary Список объектов недвижимости
// @Description Публичный каталог с фильтрами по городу, типу, статусу и цене
// @Tags Объекты
// @Produce json
// @Param city query string false "Город"
// @Param type query string false "Тип объекта" Enums(apartment, house, townhouse, land)
// @Param status query string false "Статус" Enums(active, pending, sold, withdrawn)
// @Param seller_id query int false "ID продавца"
// @Param min_price query number false "Минимальная цена"
// @Param max_price query number false "Максимальная цена"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Список объектов"
// @Router /properties [get]
func (h *Handler) getProperties(c *gin.Context) {
	var filter domain.PropertyFilter

	if city := c.Query("city"); city != "" {
		filter.City = &city
	}
	if typeStr := c.Query("type"); typeStr != "" {
		propertyType := domain.PropertyType(typeStr)
		filter.Type = &propertyType
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.PropertyStatus(statusStr)
		filter.Status = &status
	}
	if sellerStr := c.Query("seller_id"); sellerStr != "" {
		sellerID, err := strconv.ParseInt(sellerStr, 10, 64)
		if err == nil {
			filter.SellerID = &sellerID
		}
	}
	if minStr := c.Query("min_price"); minStr != "" {
		minPrice, err := strconv.ParseFloat(minStr, 64)
		if err == nil {
			filter.MinPrice = &minPrice
		}
	}
	if maxStr := c.Query("max_price"); maxStr != "" {
		maxPrice, err := strconv.ParseFloat(maxStr, 64)
		if err == nil {
			filter.MaxPrice = &maxPrice
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

	properties, total, err := h.services.Property.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка получения списка объектов", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, properties, total, page, limit)
}

// @Summary Объект по ID
// @Tags Объекты
// @Produce json
// @Param id path int true "ID объекта"
// @Success 200 {object} domain.Property "Объект недвижимости"
// @Failure 404 {object} errorResponseBody "Объект не найден"
// @Router /properties/{id} [get]
func (h *Handler) getPropertyByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	property, err := h.services.Property.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "объект не найден")
		return
	}

	successResponse(c, http.StatusOK, property)
}

// @Summary Создание объекта
// @Tags Объекты
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreatePropertyDTO true "Данные объекта"
// @Success 201 {object} successResponseBody "Идентификатор объекта"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /properties [post]
func (h *Handler) createProperty(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreatePropertyDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Property.Create(c.Request.Context(), userID, input)
	if err != nil {
		h.logger.Error("ошибка создания объекта", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновление объекта
// @Tags Объекты
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID объекта"
// @Param input body domain.UpdatePropertyDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType "Объект обновлен"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /properties/{id} [put]
func (h *Handler) updateProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.UpdatePropertyDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Property.Update(c.Request.Context(), id, userID, input); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка обновления объекта", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "объект обновлен")
}

// @Summary Удаление объекта
// @Tags Объекты
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID объекта"
// @Success 204 {object} nil "Объект удален"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /properties/{id} [delete]
func (h *Handler) deleteProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if err := h.services.Property.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка удаления объекта", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Загрузка фотографии объекта
// @Tags Объекты
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID объекта"
// @Param photo formData file true "Файл фотографии (jpeg, png, webp)"
// @Success 200 {object} successResponseBody "URL фотографии"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /properties/{id}/photos [post]
func (h *Handler) uploadPropertyPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		badRequestResponse(c, "файл не передан")
		return
	}

	if fileHeader.Size > maxUploadSize {
		badRequestResponse(c, "файл слишком большой")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("ошибка открытия файла", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "ошибка чтения файла")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("ошибка чтения файла", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "ошибка чтения файла")
		return
	}

	url, err := h.services.Property.UploadPhoto(c.Request.Context(), id, userID, data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка загрузки фотографии", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"url": url,
	})
}

// @Summary Удаление фотографии объекта
// @Tags Объекты
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID объекта"
// @Param url query string true "URL фотографии"
// @Success 204 {object} nil "Фотография удалена"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /properties/{id}/photos [delete]
func (h *Handler) deletePropertyPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	photoURL := c.Query("url")
	if photoURL == "" {
		badRequestResponse(c, "не указан URL фотографии")
		return
	}

	if err := h.services.Property.DeletePhoto(c.Request.Context(), id, userID, photoURL); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка удаления фотографии", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
