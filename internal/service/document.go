package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/repository"
	"doma/internal/storage"
	"doma/pkg/auth"
)

const signatureTokenLength = 32

type DocumentServiceImpl struct {
	repo         repository.DocumentRepository
	propertyRepo repository.PropertyRepository
	fileStorage  storage.FileStorage
	logger       *zap.Logger
}

func NewDocumentService(repo repository.DocumentRepository, propertyRepo repository.PropertyRepository, fileStorage storage.FileStorage, logger *zap.Logger) *DocumentServiceImpl {
	return &DocumentServiceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

func (s *DocumentServiceImpl) Upload(ctx context.Context, ownerID, propertyID int64, data []byte, filename string) (*domain.Document, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		s.logger.Error("объект не найден при загрузке документа", zap.Int64("propertyID", propertyID), zap.Error(err))
		return nil, fmt.Errorf("%w: объект не найден", ErrInvalidArgument)
	}

	if property.SellerID != ownerID {
		return nil, ErrForbidden
	}

	fileURL, err := s.fileStorage.UploadFile(ctx, data, filename, "documents")
	if err != nil {
		s.logger.Error("ошибка загрузки документа в хранилище", zap.Int64("propertyID", propertyID), zap.Error(err))
		return nil, errors.New("ошибка загрузки документа")
	}

	document := domain.Document{
		PropertyID:  propertyID,
		OwnerID:     ownerID,
		Name:        filename,
		FileURL:     fileURL,
		ContentType: http.DetectContentType(data),
		Size:        int64(len(data)),
	}

	id, err := s.repo.CreateDocument(ctx, document)
	if err != nil {
		s.logger.Error("ошибка сохранения документа", zap.Int64("propertyID", propertyID), zap.Error(err))
		if delErr := s.fileStorage.DeleteFile(ctx, fileURL); delErr != nil {
			s.logger.Warn("ошибка удаления файла после неудачного сохранения", zap.Error(delErr))
		}
		return nil, errors.New("ошибка загрузки документа")
	}

	document.ID = id
	return &document, nil
}

func (s *DocumentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	document, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		s.logger.Error("документ не найден", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("документ не найден")
	}
	return document, nil
}

func (s *DocumentServiceImpl) ListByProperty(ctx context.Context, propertyID, userID int64) ([]domain.Document, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		s.logger.Error("объект не найден", zap.Int64("propertyID", propertyID), zap.Error(err))
		return nil, errors.New("объект не найден")
	}

	if property.SellerID != userID {
		return nil, ErrForbidden
	}

	documents, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		s.logger.Error("ошибка получения документов", zap.Int64("propertyID", propertyID), zap.Error(err))
		return nil, errors.New("ошибка получения документов")
	}

	return documents, nil
}

func (s *DocumentServiceImpl) GetDownloadURL(ctx context.Context, id, userID int64, expiry time.Duration) (string, error) {
	document, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		s.logger.Error("документ не найден", zap.Int64("id", id), zap.Error(err))
		return "", errors.New("документ не найден")
	}

	if document.OwnerID != userID {
		return "", ErrForbidden
	}

	if expiry <= 0 || expiry > 24*time.Hour {
		expiry = time.Hour
	}

	url, err := s.fileStorage.GetPresignedURL(ctx, document.FileURL, expiry)
	if err != nil {
		s.logger.Error("ошибка генерации ссылки на документ", zap.Int64("id", id), zap.Error(err))
		return "", errors.New("ошибка генерации ссылки на документ")
	}

	return url, nil
}

func (s *DocumentServiceImpl) Delete(ctx context.Context, id, userID int64) error {
	document, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		s.logger.Error("документ не найден", zap.Int64("id", id), zap.Error(err))
		return errors.New("документ не найден")
	}

	if document.OwnerID != userID {
		return ErrForbidden
	}

	if err := s.fileStorage.DeleteFile(ctx, document.FileURL); err != nil {
		s.logger.Warn("ошибка удаления файла документа", zap.String("url", document.FileURL), zap.Error(err))
	}

	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		s.logger.Error("ошибка удаления документа", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка удаления документа")
	}

	return nil
}

// RequestSignature создает запрос на подписание: подписант получает
// одноразовую ссылку с токеном, сам токен наружу не отдается повторно.
func (s *DocumentServiceImpl) RequestSignature(ctx context.Context, requesterID int64, dto domain.CreateSignatureRequestDTO) (*domain.SignatureRequest, error) {
	document, err := s.repo.GetDocumentByID(ctx, dto.DocumentID)
	if err != nil {
		s.logger.Error("документ не найден", zap.Int64("documentID", dto.DocumentID), zap.Error(err))
		return nil, fmt.Errorf("%w: документ не найден", ErrInvalidArgument)
	}

	if document.OwnerID != requesterID {
		return nil, ErrForbidden
	}

	token, err := auth.GenerateRandomToken(signatureTokenLength)
	if err != nil {
		s.logger.Error("ошибка генерации токена подписания", zap.Error(err))
		return nil, errors.New("ошибка создания запроса на подписание")
	}

	request := domain.SignatureRequest{
		DocumentID:  dto.DocumentID,
		RequesterID: requesterID,
		SignerEmail: dto.SignerEmail,
		SignerName:  dto.SignerName,
		Token:       token,
		Status:      domain.SignatureRequestStatusPending,
	}

	id, err := s.repo.CreateSignatureRequest(ctx, request)
	if err != nil {
		s.logger.Error("ошибка сохранения запроса на подписание", zap.Int64("documentID", dto.DocumentID), zap.Error(err))
		return nil, errors.New("ошибка создания запроса на подписание")
	}

	request.ID = id
	return &request, nil
}

func (s *DocumentServiceImpl) GetSignatureRequest(ctx context.Context, token string) (*domain.SignatureRequest, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: пустой токен", ErrInvalidArgument)
	}

	request, err := s.repo.GetSignatureRequestByToken(ctx, token)
	if err != nil {
		s.logger.Error("запрос на подписание не найден", zap.Error(err))
		return nil, errors.New("запрос на подписание не найден")
	}

	return request, nil
}

func (s *DocumentServiceImpl) ListSignatureRequests(ctx context.Context, documentID, userID int64) ([]domain.SignatureRequest, error) {
	document, err := s.repo.GetDocumentByID(ctx, documentID)
	if err != nil {
		s.logger.Error("документ не найден", zap.Int64("id", documentID), zap.Error(err))
		return nil, errors.New("документ не найден")
	}

	if document.OwnerID != userID {
		return nil, ErrForbidden
	}

	requests, err := s.repo.ListSignatureRequestsByDocument(ctx, documentID)
	if err != nil {
		s.logger.Error("ошибка получения запросов на подписание", zap.Int64("documentID", documentID), zap.Error(err))
		return nil, errors.New("ошибка получения запросов на подписание")
	}

	return requests, nil
}

// ResolveSignature фиксирует решение подписанта по токену из ссылки.
func (s *DocumentServiceImpl) ResolveSignature(ctx context.Context, token string, signed bool) error {
	request, err := s.repo.GetSignatureRequestByToken(ctx, token)
	if err != nil {
		s.logger.Error("запрос на подписание не найден", zap.Error(err))
		return errors.New("запрос на подписание не найден")
	}

	if request.Status != domain.SignatureRequestStatusPending {
		return errors.New("запрос на подписание уже обработан")
	}

	status := domain.SignatureRequestStatusDeclined
	var signedAt *time.Time
	if signed {
		status = domain.SignatureRequestStatusSigned
		now := time.Now()
		signedAt = &now
	}

	if err := s.repo.UpdateSignatureRequestStatus(ctx, request.ID, status, signedAt); err != nil {
		s.logger.Error("ошибка обновления запроса на подписание", zap.Int64("id", request.ID), zap.Error(err))
		return errors.New("ошибка обновления запроса на подписание")
	}

	return nil
}
