package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"doma/config"
	"doma/internal/domain"
	"doma/internal/repository"
	"doma/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
}

type Services struct {
	User         UserService
	Auth         AuthService
	Property     PropertyService
	Availability AvailabilityService
	Showing      ShowingService
	Messaging    MessagingService
	Document     DocumentService
}

func NewServices(deps Deps) *Services {
	availability := NewAvailabilityService(deps.Repos.Availability, deps.Repos.Showing, deps.Repos.Property, deps.Config.Showings, deps.Logger)

	return &Services{
		User:         NewUserService(deps.Repos.User, deps.Repos.Auth, deps.Logger),
		Auth:         NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		Property:     NewPropertyService(deps.Repos.Property, deps.FileStorage, deps.Logger),
		Availability: availability,
		Showing:      NewShowingService(deps.Repos.Showing, deps.Repos.Property, deps.Repos.User, availability, deps.Logger),
		Messaging:    NewMessagingService(deps.Repos.Conversation, deps.Repos.Property, deps.Logger),
		Document:     NewDocumentService(deps.Repos.Document, deps.Repos.Property, deps.FileStorage, deps.Logger),
	}
}

type UserService interface {
	Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)

	EnableTwoFactor(ctx context.Context, id int64) ([]string, error)
	DisableTwoFactor(ctx context.Context, id int64) error
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, dto domain.TwoFactorVerifyRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type PropertyService interface {
	Create(ctx context.Context, sellerID int64, dto domain.CreatePropertyDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	Update(ctx context.Context, id, userID int64, dto domain.UpdatePropertyDTO) error
	Delete(ctx context.Context, id, userID int64) error
	List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, int, error)

	UploadPhoto(ctx context.Context, propertyID, userID int64, photo []byte, filename string) (string, error)
	DeletePhoto(ctx context.Context, propertyID, userID int64, photoURL string) error
}

type AvailabilityService interface {
	// ComputeSlots возвращает слоты показов на дату (формат YYYY-MM-DD).
	// Единственная фатальная ошибка — некорректные аргументы.
	ComputeSlots(ctx context.Context, propertyID, sellerID int64, dateStr string) (*domain.DayAvailability, error)

	CreateWindow(ctx context.Context, sellerID int64, dto domain.CreateAvailabilityWindowDTO) (int64, error)
	ListWindows(ctx context.Context, propertyID int64) ([]domain.AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, id, sellerID int64, dto domain.UpdateAvailabilityWindowDTO) error
	DeleteWindow(ctx context.Context, id, sellerID int64) error
}

type ShowingService interface {
	Create(ctx context.Context, buyerID int64, dto domain.CreateShowingDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Showing, error)
	List(ctx context.Context, filter domain.ShowingFilter) ([]domain.Showing, int, error)
	ChangeStatus(ctx context.Context, id, userID int64, status domain.ShowingStatus) error
}

type MessagingService interface {
	CreateConversation(ctx context.Context, buyerID int64, dto domain.CreateConversationDTO) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id, userID int64) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
	SendMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.Message, error)
	ListMessages(ctx context.Context, conversationID, userID int64, limit, offset int) ([]domain.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID int64) error
	CountUnread(ctx context.Context, conversationID, userID int64) (int, error)
}

type DocumentService interface {
	Upload(ctx context.Context, ownerID, propertyID int64, data []byte, filename string) (*domain.Document, error)
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	ListByProperty(ctx context.Context, propertyID, userID int64) ([]domain.Document, error)
	GetDownloadURL(ctx context.Context, id, userID int64, expiry time.Duration) (string, error)
	Delete(ctx context.Context, id, userID int64) error

	RequestSignature(ctx context.Context, requesterID int64, dto domain.CreateSignatureRequestDTO) (*domain.SignatureRequest, error)
	GetSignatureRequest(ctx context.Context, token string) (*domain.SignatureRequest, error)
	ListSignatureRequests(ctx context.Context, documentID, userID int64) ([]domain.SignatureRequest, error)
	ResolveSignature(ctx context.Context, token string, signed bool) error
}
