package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"doma/config"
	"doma/internal/availability"
	"doma/internal/domain"
	"doma/internal/repository"
)

const dateLayout = "2006-01-02"

type AvailabilityServiceImpl struct {
	repo         repository.AvailabilityRepository
	showingRepo  repository.ShowingRepository
	propertyRepo repository.PropertyRepository
	defaults     config.ShowingsConfig
	logger       *zap.Logger

	// now подменяется в тестах
	now func() time.Time
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	showingRepo repository.ShowingRepository,
	propertyRepo repository.PropertyRepository,
	defaults config.ShowingsConfig,
	logger *zap.Logger,
) *AvailabilityServiceImpl {
	return &AvailabilityServiceImpl{
		repo:         repo,
		showingRepo:  showingRepo,
		propertyRepo: propertyRepo,
		defaults:     defaults,
		logger:       logger,
		now:          time.Now,
	}
}

// ComputeSlots рассчитывает слоты показов на дату. Ошибки чтения данных
// не фатальны: без окна продавца берется окно по умолчанию, без списка
// занятых показов слоты отдаются нефильтрованными с флагом Degraded.
func (s *AvailabilityServiceImpl) ComputeSlots(ctx context.Context, propertyID, sellerID int64, dateStr string) (*domain.DayAvailability, error) {
	if propertyID <= 0 || sellerID <= 0 {
		return nil, fmt.Errorf("%w: идентификаторы объекта и продавца обязательны", ErrInvalidArgument)
	}

	date, err := time.ParseInLocation(dateLayout, dateStr, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: неверный формат даты, ожидается YYYY-MM-DD", ErrInvalidArgument)
	}

	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	// Окно и занятые показы независимы, читаем их параллельно
	// и ждем оба результата.
	var (
		wg        sync.WaitGroup
		window    *domain.AvailabilityWindow
		windowErr error
		booked    []domain.Showing
		bookedErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		window, windowErr = s.repo.GetWindow(ctx, sellerID, propertyID, int(date.Weekday()))
	}()
	go func() {
		defer wg.Done()
		booked, bookedErr = s.showingRepo.GetBookedForDay(ctx, propertyID, sellerID, dayStart, dayEnd)
	}()
	wg.Wait()

	startClock := s.defaults.DefaultStartTime
	endClock := s.defaults.DefaultEndTime
	slotLength := s.defaults.DefaultSlotLength

	switch {
	case windowErr != nil:
		s.logger.Warn("не удалось прочитать окно доступности, используется окно по умолчанию",
			zap.Int64("propertyID", propertyID),
			zap.Int64("sellerID", sellerID),
			zap.Error(windowErr))
	case window != nil && window.IsAvailable:
		startClock = window.StartTime
		endClock = window.EndTime
		if window.SlotMinutes > 0 {
			slotLength = time.Duration(window.SlotMinutes) * time.Minute
		}
	}

	windowStart, windowEnd, err := availability.WindowOnDate(date, startClock, endClock)
	if err != nil {
		// Испорченные данные окна приравниваем к его отсутствию.
		s.logger.Warn("окно доступности содержит некорректное время, используется окно по умолчанию",
			zap.Int64("propertyID", propertyID),
			zap.Error(err))
		windowStart, windowEnd, err = availability.WindowOnDate(date, s.defaults.DefaultStartTime, s.defaults.DefaultEndTime)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора окна по умолчанию: %w", err)
		}
		slotLength = s.defaults.DefaultSlotLength
	}

	slots := availability.GenerateSlots(windowStart, windowEnd, slotLength)

	degraded := false
	if bookedErr != nil {
		degraded = true
		s.logger.Warn("не удалось прочитать занятые показы, слоты отданы без фильтрации",
			zap.Int64("propertyID", propertyID),
			zap.Int64("sellerID", sellerID),
			zap.String("date", dateStr),
			zap.Error(bookedErr))
	} else {
		slots = availability.MarkBooked(slots, booked)
	}

	slots = availability.DropPast(slots, s.now(), date)

	return &domain.DayAvailability{
		Date:     dateStr,
		Slots:    slots,
		Degraded: degraded,
	}, nil
}

func (s *AvailabilityServiceImpl) CreateWindow(ctx context.Context, sellerID int64, dto domain.CreateAvailabilityWindowDTO) (int64, error) {
	property, err := s.propertyRepo.GetByID(ctx, dto.PropertyID)
	if err != nil {
		s.logger.Error("объект не найден при создании окна доступности", zap.Int64("propertyID", dto.PropertyID), zap.Error(err))
		return 0, fmt.Errorf("%w: объект не найден", ErrInvalidArgument)
	}

	if property.SellerID != sellerID {
		return 0, ErrForbidden
	}

	if err := validateClockRange(dto.StartTime, dto.EndTime); err != nil {
		return 0, err
	}

	if dto.SlotMinutes < 0 || dto.SlotMinutes > 240 {
		return 0, fmt.Errorf("%w: длительность слота должна быть от 1 до 240 минут", ErrInvalidArgument)
	}

	id, err := s.repo.CreateWindow(ctx, sellerID, dto)
	if err != nil {
		s.logger.Error("ошибка сохранения окна доступности", zap.Error(err))
		return 0, fmt.Errorf("ошибка сохранения окна доступности: %w", err)
	}

	return id, nil
}

func (s *AvailabilityServiceImpl) ListWindows(ctx context.Context, propertyID int64) ([]domain.AvailabilityWindow, error) {
	windows, err := s.repo.ListWindowsByProperty(ctx, propertyID)
	if err != nil {
		s.logger.Error("ошибка получения окон доступности", zap.Int64("propertyID", propertyID), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения окон доступности: %w", err)
	}
	return windows, nil
}

func (s *AvailabilityServiceImpl) UpdateWindow(ctx context.Context, id, sellerID int64, dto domain.UpdateAvailabilityWindowDTO) error {
	window, err := s.repo.GetWindowByID(ctx, id)
	if err != nil {
		s.logger.Error("окно доступности не найдено", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("окно доступности не найдено: %w", err)
	}

	if window.SellerID != sellerID {
		return ErrForbidden
	}

	startClock := window.StartTime
	if dto.StartTime != nil {
		startClock = *dto.StartTime
	}
	endClock := window.EndTime
	if dto.EndTime != nil {
		endClock = *dto.EndTime
	}
	if err := validateClockRange(startClock, endClock); err != nil {
		return err
	}

	if err := s.repo.UpdateWindow(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления окна доступности", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("ошибка обновления окна доступности: %w", err)
	}

	return nil
}

func (s *AvailabilityServiceImpl) DeleteWindow(ctx context.Context, id, sellerID int64) error {
	window, err := s.repo.GetWindowByID(ctx, id)
	if err != nil {
		s.logger.Error("окно доступности не найдено", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("окно доступности не найдено: %w", err)
	}

	if window.SellerID != sellerID {
		return ErrForbidden
	}

	if err := s.repo.DeleteWindow(ctx, id); err != nil {
		s.logger.Error("ошибка удаления окна доступности", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("ошибка удаления окна доступности: %w", err)
	}

	return nil
}

func validateClockRange(startClock, endClock string) error {
	start, err := time.Parse("15:04", startClock)
	if err != nil {
		return fmt.Errorf("%w: неверный формат времени начала, ожидается HH:MM", ErrInvalidArgument)
	}

	end, err := time.Parse("15:04", endClock)
	if err != nil {
		return fmt.Errorf("%w: неверный формат времени окончания, ожидается HH:MM", ErrInvalidArgument)
	}

	if !end.After(start) {
		return fmt.Errorf("%w: время начала должно быть раньше времени окончания", ErrInvalidArgument)
	}

	return nil
}
