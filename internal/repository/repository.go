package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"doma/internal/domain"
)

type Repositories struct {
	User         UserRepository
	Auth         AuthRepository
	Property     PropertyRepository
	Availability AvailabilityRepository
	Showing      ShowingRepository
	Conversation ConversationRepository
	Document     DocumentRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Auth:         NewAuthRepository(db),
		Property:     NewPropertyRepository(db),
		Availability: NewAvailabilityRepository(db),
		Showing:      NewShowingRepository(db),
		Conversation: NewConversationRepository(db),
		Document:     NewDocumentRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetTwoFactorEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error

	ReplaceBackupCodes(ctx context.Context, userID int64, codeHashes []string) error
	GetUnusedBackupCodes(ctx context.Context, userID int64) ([]domain.TwoFactorBackupCode, error)
	MarkBackupCodeUsed(ctx context.Context, id int64) error
	DeleteBackupCodes(ctx context.Context, userID int64) error
}

type PropertyRepository interface {
	Create(ctx context.Context, sellerID int64, property domain.CreatePropertyDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	Update(ctx context.Context, id int64, property domain.UpdatePropertyDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error)
	CountByFilter(ctx context.Context, filter domain.PropertyFilter) (int, error)
	AddPhotoURL(ctx context.Context, id int64, url string) error
	RemovePhotoURL(ctx context.Context, id int64, url string) error
}

type AvailabilityRepository interface {
	CreateWindow(ctx context.Context, sellerID int64, window domain.CreateAvailabilityWindowDTO) (int64, error)
	GetWindowByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error)
	// GetWindow возвращает nil без ошибки, если окно на день недели не задано.
	GetWindow(ctx context.Context, sellerID, propertyID int64, dayOfWeek int) (*domain.AvailabilityWindow, error)
	ListWindowsByProperty(ctx context.Context, propertyID int64) ([]domain.AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, id int64, window domain.UpdateAvailabilityWindowDTO) error
	DeleteWindow(ctx context.Context, id int64) error
}

type ShowingRepository interface {
	Create(ctx context.Context, buyerID int64, showing domain.CreateShowingDTO, sellerID int64, endTime time.Time) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Showing, error)
	Update(ctx context.Context, id int64, showing domain.UpdateShowingDTO) error
	List(ctx context.Context, filter domain.ShowingFilter) ([]domain.Showing, error)
	CountByFilter(ctx context.Context, filter domain.ShowingFilter) (int, error)
	// GetBookedForDay возвращает показы объекта за [dayStart, dayEnd),
	// статусы declined и cancelled исключаются на уровне запроса.
	GetBookedForDay(ctx context.Context, propertyID, sellerID int64, dayStart, dayEnd time.Time) ([]domain.Showing, error)
}

type ConversationRepository interface {
	CreateConversation(ctx context.Context, conversation domain.Conversation) (int64, error)
	GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error)
	GetConversationByParticipants(ctx context.Context, propertyID, buyerID int64) (*domain.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID int64) ([]domain.Conversation, error)

	CreateMessage(ctx context.Context, senderID int64, dto domain.SendMessageDTO) (*domain.Message, error)
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]domain.Message, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID int64) error
	CountUnread(ctx context.Context, conversationID, userID int64) (int, error)
}

type DocumentRepository interface {
	CreateDocument(ctx context.Context, document domain.Document) (int64, error)
	GetDocumentByID(ctx context.Context, id int64) (*domain.Document, error)
	ListByProperty(ctx context.Context, propertyID int64) ([]domain.Document, error)
	DeleteDocument(ctx context.Context, id int64) error

	CreateSignatureRequest(ctx context.Context, request domain.SignatureRequest) (int64, error)
	GetSignatureRequestByToken(ctx context.Context, token string) (*domain.SignatureRequest, error)
	ListSignatureRequestsByDocument(ctx context.Context, documentID int64) ([]domain.SignatureRequest, error)
	UpdateSignatureRequestStatus(ctx context.Context, id int64, status domain.SignatureRequestStatus, signedAt *time.Time) error
}
