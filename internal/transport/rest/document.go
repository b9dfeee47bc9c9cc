package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/service"
)

// @Summary Загрузка документа
// @Description Продавец загружает документ сделки (PDF) для своего объекта
// @Tags Документы
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param property_id formData int true "ID объекта"
// @Param file formData file true "Файл документа"
// @Success 201 {object} domain.Document "Документ"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /documents [post]
func (h *Handler) uploadDocument(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	propertyID, err := strconv.ParseInt(c.PostForm("property_id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	fileHeader, err := c.FormFile("file")
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

	document, err := h.services.Document.Upload(c.Request.Context(), userID, propertyID, data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка загрузки документа", zap.Int64("propertyID", propertyID), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, document)
}

// @Summary Документ по ID
// @Tags Документы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID документа"
// @Success 200 {object} domain.Document "Документ"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Документ не найден"
// @Router /documents/{id} [get]
func (h *Handler) getDocumentByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID документа")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	document, err := h.services.Document.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "документ не найден")
		return
	}

	if document.OwnerID != userID {
		forbiddenResponse(c)
		return
	}

	successResponse(c, http.StatusOK, document)
}

// @Summary Документы объекта
// @Tags Документы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID объекта"
// @Success 200 {object} successResponseBody "Документы объекта"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /properties/{id}/documents [get]
func (h *Handler) getPropertyDocuments(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID объекта")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	documents, err := h.services.Document.ListByProperty(c.Request.Context(), propertyID, userID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка получения документов", zap.Int64("propertyID", propertyID), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, documents)
}

// @Summary Ссылка на скачивание документа
// @Description Возвращает временную пресайн-ссылку на файл в хранилище
// @Tags Документы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID документа"
// @Param expiry query int false "Срок действия ссылки в минутах"
// @Success 200 {object} successResponseBody "Ссылка на скачивание"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /documents/{id}/download [get]
func (h *Handler) getDocumentDownloadURL(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID документа")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	expiryMinutes, err := strconv.Atoi(c.DefaultQuery("expiry", "60"))
	if err != nil || expiryMinutes <= 0 {
		expiryMinutes = 60
	}

	url, err := h.services.Document.GetDownloadURL(c.Request.Context(), id, userID, time.Duration(expiryMinutes)*time.Minute)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка генерации ссылки", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"url": url,
	})
}

// @Summary Удаление документа
// @Tags Документы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID документа"
// @Success 204 {object} nil "Документ удален"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /documents/{id} [delete]
func (h *Handler) deleteDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID документа")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if err := h.services.Document.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка удаления документа", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Запрос на подписание
// @Description Создает запрос и одноразовую ссылку для подписанта
// @Tags Документы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateSignatureRequestDTO true "Документ и данные подписанта"
// @Success 201 {object} successResponseBody "Запрос и ссылка на подписание"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /documents/signature-requests [post]
func (h *Handler) createSignatureRequest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateSignatureRequestDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	request, err := h.services.Document.RequestSignature(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		h.logger.Error("ошибка создания запроса на подписание", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	// Токен отдается единственный раз, в составе ссылки.
	createdResponse(c, map[string]interface{}{
		"request":  request,
		"sign_url": "/api/v1/documents/sign/" + request.Token,
	})
}

// @Summary Запросы на подписание документа
// @Tags Документы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID документа"
// @Success 200 {object} successResponseBody "Запросы на подписание"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /documents/{id}/signature-requests [get]
func (h *Handler) getSignatureRequests(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID документа")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	requests, err := h.services.Document.ListSignatureRequests(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			forbiddenResponse(c)
			return
		}
		h.logger.Error("ошибка получения запросов на подписание", zap.Int64("documentID", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, requests)
}

// @Summary Запрос на подписание по токену
// @Description Подписант открывает запрос по ссылке без авторизации
// @Tags Документы
// @Produce json
// @Param token path string true "Токен из ссылки"
// @Success 200 {object} domain.SignatureRequest "Запрос на подписание"
// @Failure 404 {object} errorResponseBody "Запрос не найден"
// @Router /documents/sign/{token} [get]
func (h *Handler) getSignatureRequestByToken(c *gin.Context) {
	token := c.Param("token")

	request, err := h.services.Document.GetSignatureRequest(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			badRequestResponse(c, err.Error())
			return
		}
		notFoundResponse(c, "запрос на подписание не найден")
		return
	}

	successResponse(c, http.StatusOK, request)
}

type resolveSignatureInput struct {
	Signed bool `json:"signed"`
}

// @Summary Решение по подписанию
// @Description Подписант подтверждает или отклоняет подписание, запрос обрабатывается один раз
// @Tags Документы
// @Accept json
// @Produce json
// @Param token path string true "Токен из ссылки"
// @Param input body resolveSignatureInput true "Решение подписанта"
// @Success 200 {object} messageResponseType "Решение зафиксировано"
// @Failure 404 {object} errorResponseBody "Запрос не найден"
// @Router /documents/sign/{token} [post]
func (h *Handler) resolveSignature(c *gin.Context) {
	token := c.Param("token")

	var input resolveSignatureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Document.ResolveSignature(c.Request.Context(), token, input.Signed); err != nil {
		h.logger.Error("ошибка обработки подписания", zap.Error(err))
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "решение зафиксировано")
}
