package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doma/internal/domain"
)

// @Summary Текущий пользователь
// @Description Возвращает профиль авторизованного пользователя
// @Tags Пользователи
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} domain.User "Профиль пользователя"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Router /users/me [get]
func (h *Handler) getCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ошибка получения пользователя", zap.Int64("id", userID), zap.Error(err))
		notFoundResponse(c, "пользователь не найден")
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Пользователь по ID
// @Tags Пользователи
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} domain.User "Профиль пользователя"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Router /users/{id} [get]
func (h *Handler) getUserByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID пользователя")
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, "пользователь не найден")
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Обновление профиля
// @Description Пользователь может менять только собственный профиль, администратор — любой
// @Tags Пользователи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param input body domain.UpdateUserDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType "Профиль обновлен"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /users/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID пользователя")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	role, _ := getUserRole(c)
	if id != userID && role != domain.UserRoleAdmin {
		forbiddenResponse(c)
		return
	}

	var input domain.UpdateUserDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	// Активность аккаунта меняет только администратор.
	if input.IsActive != nil && role != domain.UserRoleAdmin {
		input.IsActive = nil
	}

	if err := h.services.User.Update(c.Request.Context(), id, input); err != nil {
		h.logger.Error("ошибка обновления пользователя", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "профиль обновлен")
}

// @Summary Смена пароля
// @Description Требует текущий пароль, все активные сессии завершаются
// @Tags Пользователи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param input body domain.PasswordUpdateDTO true "Старый и новый пароль"
// @Success 200 {object} messageResponseType "Пароль изменен"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /users/{id}/password [put]
func (h *Handler) updatePassword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID пользователя")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if id != userID {
		forbiddenResponse(c)
		return
	}

	var input domain.PasswordUpdateDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.User.UpdatePassword(c.Request.Context(), id, input); err != nil {
		h.logger.Error("ошибка смены пароля", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "пароль изменен")
}

// @Summary Включение двухфакторной аутентификации
// @Description Возвращает резервные коды, они показываются один раз
// @Tags Пользователи
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} successResponseBody "Резервные коды"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Router /users/me/2fa [post]
func (h *Handler) enableTwoFactor(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	codes, err := h.services.User.EnableTwoFactor(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ошибка включения 2FA", zap.Int64("id", userID), zap.Error(err))
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"backup_codes": codes,
	})
}

// @Summary Отключение двухфакторной аутентификации
// @Tags Пользователи
// @Security ApiKeyAuth
// @Produce json
// @Success 204 {object} nil "2FA отключена"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Router /users/me/2fa [delete]
func (h *Handler) disableTwoFactor(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if err := h.services.User.DisableTwoFactor(c.Request.Context(), userID); err != nil {
		h.logger.Error("ошибка отключения 2FA", zap.Int64("id", userID), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Создание пользователя администратором
// @Tags Пользователи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateUserDTO true "Данные пользователя"
// @Success 201 {object} successResponseBody "Идентификатор пользователя"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /users [post]
func (h *Handler) createUser(c *gin.Context) {
	var input domain.CreateUserDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.User.Create(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("ошибка создания пользователя", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Список пользователей
// @Tags Пользователи
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} successResponseBody "Список пользователей"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /users [get]
func (h *Handler) getUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, err := h.services.User.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("ошибка получения списка пользователей", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, users)
}

// @Summary Деактивация пользователя
// @Description Аккаунт деактивируется, данные не удаляются
// @Tags Пользователи
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 204 {object} nil "Пользователь деактивирован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Router /users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID пользователя")
		return
	}

	if err := h.services.User.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("ошибка деактивации пользователя", zap.Int64("id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
