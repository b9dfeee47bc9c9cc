package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doma/config"
	"doma/internal/service"
	"doma/internal/transport/websocket"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	hub      *websocket.Hub
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, hub *websocket.Hub) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
		hub:      hub,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/2fa/verify", h.verifyTwoFactor)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.GET("/:id", h.getUserByID)
			users.PUT("/:id", h.updateUser)
			users.PUT("/:id/password", h.updatePassword)

			users.POST("/me/2fa", h.enableTwoFactor)
			users.DELETE("/me/2fa", h.disableTwoFactor)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.POST("/", h.createUser)
				admin.GET("/", h.getUsers)
				admin.DELETE("/:id", h.deleteUser)
			}
		}

		properties := api.Group("/properties")
		{
			properties.GET("/", h.getProperties)
			properties.GET("/:id", h.getPropertyByID)
			properties.GET("/:id/slots", h.getPropertySlots)
			properties.GET("/:id/windows", h.getPropertyWindows)
			properties.GET("/:id/documents", h.authMiddleware(), h.getPropertyDocuments)

			seller := properties.Group("/", h.authMiddleware(), h.sellerMiddleware())
			{
				seller.POST("/", h.createProperty)
				seller.PUT("/:id", h.updateProperty)
				seller.DELETE("/:id", h.deleteProperty)

				seller.POST("/:id/photos", h.uploadPropertyPhoto)
				seller.DELETE("/:id/photos", h.deletePropertyPhoto)
			}
		}

		h.initAvailabilityRoutes(api)

		showings := api.Group("/showings")
		showings.Use(h.authMiddleware())
		{
			showings.POST("/", h.createShowing)
			showings.GET("/", h.getShowings)
			showings.GET("/:id", h.getShowingByID)
			showings.PUT("/:id/status", h.changeShowingStatus)
		}

		conversations := api.Group("/conversations")
		conversations.Use(h.authMiddleware())
		{
			conversations.POST("/", h.createConversation)
			conversations.GET("/", h.getConversations)
			conversations.GET("/:id", h.getConversationByID)
			conversations.GET("/:id/messages", h.getMessages)
			conversations.POST("/:id/read", h.markMessagesRead)
			conversations.GET("/:id/unread", h.getUnreadCount)

			conversations.POST("/messages", h.sendMessage)
		}

		documents := api.Group("/documents")
		{
			auth := documents.Group("/", h.authMiddleware())
			{
				auth.POST("/", h.uploadDocument)
				auth.GET("/:id", h.getDocumentByID)
				auth.GET("/:id/download", h.getDocumentDownloadURL)
				auth.DELETE("/:id", h.deleteDocument)

				auth.POST("/signature-requests", h.createSignatureRequest)
				auth.GET("/:id/signature-requests", h.getSignatureRequests)
			}

			// Подписант проходит по ссылке с токеном без авторизации.
			documents.GET("/sign/:token", h.getSignatureRequestByToken)
			documents.POST("/sign/:token", h.resolveSignature)
		}
	}

	router.GET("/ws/messages", h.hub.HandleWebSocket)
}

func (h *Handler) initAvailabilityRoutes(api *gin.RouterGroup) {
	windows := api.Group("/availability")
	windows.Use(h.authMiddleware(), h.sellerMiddleware())
	{
		windows.POST("/", h.createAvailabilityWindow)
		windows.PUT("/:id", h.updateAvailabilityWindow)
		windows.DELETE("/:id", h.deleteAvailabilityWindow)
	}
}
