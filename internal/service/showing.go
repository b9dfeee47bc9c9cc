package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"doma/internal/domain"
	"doma/internal/repository"
)

type ShowingServiceImpl struct {
	repo         repository.ShowingRepository
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	availability AvailabilityService
	logger       *zap.Logger
}

func NewShowingService(
	repo repository.ShowingRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	availability AvailabilityService,
	logger *zap.Logger,
) *ShowingServiceImpl {
	return &ShowingServiceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		availability: availability,
		logger:       logger,
	}
}

// Create записывает покупателя на показ. Запрошенное время должно
// совпадать с началом свободного слота на эту дату, конец показа
// берется из границ слота.
func (s *ShowingServiceImpl) Create(ctx context.Context, buyerID int64, dto domain.CreateShowingDTO) (int64, error) {
	property, err := s.propertyRepo.GetByID(ctx, dto.PropertyID)
	if err != nil {
		s.logger.Error("объект не найден при записи на показ", zap.Int64("propertyID", dto.PropertyID), zap.Error(err))
		return 0, fmt.Errorf("%w: объект не найден", ErrInvalidArgument)
	}

	if property.Status != domain.PropertyStatusActive {
		return 0, fmt.Errorf("%w: объект снят с показов", ErrInvalidArgument)
	}

	if property.SellerID == buyerID {
		return 0, fmt.Errorf("%w: нельзя записаться на показ собственного объекта", ErrInvalidArgument)
	}

	dateStr := dto.StartTime.Format("2006-01-02")
	day, err := s.availability.ComputeSlots(ctx, dto.PropertyID, property.SellerID, dateStr)
	if err != nil {
		s.logger.Error("ошибка расчета слотов при записи на показ", zap.Int64("propertyID", dto.PropertyID), zap.Error(err))
		return 0, errors.New("ошибка записи на показ")
	}

	var slot *domain.TimeSlot
	for i := range day.Slots {
		if day.Slots[i].StartTime.Equal(dto.StartTime) {
			slot = &day.Slots[i]
			break
		}
	}

	if slot == nil {
		return 0, fmt.Errorf("%w: запрошенное время не совпадает ни с одним слотом", ErrInvalidArgument)
	}
	if !slot.IsAvailable {
		return 0, errors.New("выбранный слот уже занят")
	}

	id, err := s.repo.Create(ctx, buyerID, dto, property.SellerID, slot.EndTime)
	if err != nil {
		s.logger.Error("ошибка создания показа", zap.Int64("propertyID", dto.PropertyID), zap.Error(err))
		return 0, errors.New("ошибка записи на показ")
	}

	return id, nil
}

func (s *ShowingServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Showing, error) {
	showing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("показ не найден", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("показ не найден")
	}
	return showing, nil
}

func (s *ShowingServiceImpl) List(ctx context.Context, filter domain.ShowingFilter) ([]domain.Showing, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	showings, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка показов", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка показов")
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка подсчета показов", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка показов")
	}

	return showings, total, nil
}

// allowedTransitions: кто и из какого статуса куда может перевести показ.
var allowedTransitions = map[domain.ShowingStatus][]domain.ShowingStatus{
	domain.ShowingStatusPending:   {domain.ShowingStatusConfirmed, domain.ShowingStatusDeclined, domain.ShowingStatusCancelled},
	domain.ShowingStatusConfirmed: {domain.ShowingStatusCompleted, domain.ShowingStatusDeclined, domain.ShowingStatusCancelled},
}

func (s *ShowingServiceImpl) ChangeStatus(ctx context.Context, id, userID int64, status domain.ShowingStatus) error {
	showing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("показ не найден", zap.Int64("id", id), zap.Error(err))
		return errors.New("показ не найден")
	}

	allowed := false
	for _, next := range allowedTransitions[showing.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: недопустимый переход статуса из %s в %s", ErrInvalidArgument, showing.Status, status)
	}

	switch status {
	case domain.ShowingStatusConfirmed, domain.ShowingStatusDeclined, domain.ShowingStatusCompleted:
		// Подтверждение, отклонение и завершение — действия продавца.
		if showing.SellerID != userID && !s.isAdmin(ctx, userID) {
			return ErrForbidden
		}
	case domain.ShowingStatusCancelled:
		// Отменить запись может покупатель или продавец.
		if showing.BuyerID != userID && showing.SellerID != userID && !s.isAdmin(ctx, userID) {
			return ErrForbidden
		}
	}

	if err := s.repo.Update(ctx, id, domain.UpdateShowingDTO{Status: &status}); err != nil {
		s.logger.Error("ошибка смены статуса показа", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка смены статуса показа")
	}

	return nil
}

func (s *ShowingServiceImpl) isAdmin(ctx context.Context, userID int64) bool {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return user.Role == domain.UserRoleAdmin
}
