package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/repository"
	"doma/internal/storage"
	"doma/pkg/validator"
)

type PropertyServiceImpl struct {
	repo        repository.PropertyRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
}

func NewPropertyService(repo repository.PropertyRepository, fileStorage storage.FileStorage, logger *zap.Logger) *PropertyServiceImpl {
	return &PropertyServiceImpl{
		repo:        repo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *PropertyServiceImpl) Create(ctx context.Context, sellerID int64, dto domain.CreatePropertyDTO) (int64, error) {
	if dto.PostalCode != "" && !validator.ValidatePostalCode(dto.PostalCode) {
		return 0, errors.New("некорректный почтовый индекс")
	}

	id, err := s.repo.Create(ctx, sellerID, dto)
	if err != nil {
		s.logger.Error("ошибка создания объекта", zap.Int64("sellerID", sellerID), zap.Error(err))
		return 0, errors.New("ошибка создания объекта")
	}

	return id, nil
}

func (s *PropertyServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("объект не найден", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("объект не найден")
	}
	return property, nil
}

func (s *PropertyServiceImpl) Update(ctx context.Context, id, userID int64, dto domain.UpdatePropertyDTO) error {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("объект не найден", zap.Int64("id", id), zap.Error(err))
		return errors.New("объект не найден")
	}

	if property.SellerID != userID {
		return ErrForbidden
	}

	if dto.PostalCode != nil && *dto.PostalCode != "" && !validator.ValidatePostalCode(*dto.PostalCode) {
		return errors.New("некорректный почтовый индекс")
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления объекта", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка обновления объекта")
	}

	return nil
}

func (s *PropertyServiceImpl) Delete(ctx context.Context, id, userID int64) error {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("объект не найден", zap.Int64("id", id), zap.Error(err))
		return errors.New("объект не найден")
	}

	if property.SellerID != userID {
		return ErrForbidden
	}

	for _, url := range property.PhotoURLs {
		if err := s.fileStorage.DeleteFile(ctx, url); err != nil {
			s.logger.Warn("ошибка удаления фотографии объекта", zap.String("url", url), zap.Error(err))
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления объекта", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка удаления объекта")
	}

	return nil
}

func (s *PropertyServiceImpl) List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	properties, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка объектов", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка объектов")
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка подсчета объектов", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка объектов")
	}

	return properties, total, nil
}

func (s *PropertyServiceImpl) UploadPhoto(ctx context.Context, propertyID, userID int64, photo []byte, filename string) (string, error) {
	property, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		s.logger.Error("объект не найден", zap.Int64("id", propertyID), zap.Error(err))
		return "", errors.New("объект не найден")
	}

	if property.SellerID != userID {
		return "", ErrForbidden
	}

	url, err := s.fileStorage.UploadFile(ctx, photo, filename, "photos")
	if err != nil {
		s.logger.Error("ошибка загрузки фотографии", zap.Int64("propertyID", propertyID), zap.Error(err))
		return "", errors.New("ошибка загрузки фотографии")
	}

	if err := s.repo.AddPhotoURL(ctx, propertyID, url); err != nil {
		s.logger.Error("ошибка сохранения ссылки на фотографию", zap.Int64("propertyID", propertyID), zap.Error(err))
		// Файл уже в хранилище, подчищаем за собой.
		if delErr := s.fileStorage.DeleteFile(ctx, url); delErr != nil {
			s.logger.Warn("ошибка удаления файла после неудачного сохранения", zap.Error(delErr))
		}
		return "", errors.New("ошибка загрузки фотографии")
	}

	return url, nil
}

func (s *PropertyServiceImpl) DeletePhoto(ctx context.Context, propertyID, userID int64, photoURL string) error {
	property, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		s.logger.Error("объект не найден", zap.Int64("id", propertyID), zap.Error(err))
		return errors.New("объект не найден")
	}

	if property.SellerID != userID {
		return ErrForbidden
	}

	found := false
	for _, url := range property.PhotoURLs {
		if url == photoURL {
			found = true
			break
		}
	}
	if !found {
		return errors.New("фотография не принадлежит объекту")
	}

	if err := s.fileStorage.DeleteFile(ctx, photoURL); err != nil {
		s.logger.Warn("ошибка удаления фотографии из хранилища", zap.String("url", photoURL), zap.Error(err))
	}

	if err := s.repo.RemovePhotoURL(ctx, propertyID, photoURL); err != nil {
		s.logger.Error("ошибка удаления ссылки на фотографию", zap.Int64("propertyID", propertyID), zap.Error(err))
		return errors.New("ошибка удаления фотографии")
	}

	return nil
}
