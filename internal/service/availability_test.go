package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"doma/config"
	"doma/internal/domain"
	"doma/internal/repository"
)

type fakeAvailabilityRepo struct {
	repository.AvailabilityRepository
	window *domain.AvailabilityWindow
	err    error
}

func (f *fakeAvailabilityRepo) GetWindow(ctx context.Context, sellerID, propertyID int64, dayOfWeek int) (*domain.AvailabilityWindow, error) {
	return f.window, f.err
}

type fakeShowingRepo struct {
	repository.ShowingRepository
	booked []domain.Showing
	err    error
}

func (f *fakeShowingRepo) GetBookedForDay(ctx context.Context, propertyID, sellerID int64, dayStart, dayEnd time.Time) ([]domain.Showing, error) {
	return f.booked, f.err
}

var testDefaults = config.ShowingsConfig{
	DefaultStartTime:  "09:00",
	DefaultEndTime:    "17:00",
	DefaultSlotLength: time.Hour,
}

func newTestService(windows *fakeAvailabilityRepo, showings *fakeShowingRepo, now time.Time) *AvailabilityServiceImpl {
	svc := NewAvailabilityService(windows, showings, nil, testDefaults, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func localDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestComputeSlots_InvalidArguments(t *testing.T) {
	svc := newTestService(&fakeAvailabilityRepo{}, &fakeShowingRepo{}, localDay(2026, time.September, 1))

	cases := []struct {
		name       string
		propertyID int64
		sellerID   int64
		date       string
	}{
		{"zero property", 0, 2, "2026-09-02"},
		{"zero seller", 1, 0, "2026-09-02"},
		{"bad date", 1, 2, "02.09.2026"},
		{"empty date", 1, 2, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ComputeSlots(context.Background(), tc.propertyID, tc.sellerID, tc.date)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("ожидалась ErrInvalidArgument, получено %v", err)
			}
		})
	}
}

func TestComputeSlots_DefaultWindowNoBookings(t *testing.T) {
	now := localDay(2026, time.September, 1).Add(12 * time.Hour)
	svc := newTestService(&fakeAvailabilityRepo{}, &fakeShowingRepo{}, now)

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	if result.Degraded {
		t.Error("деградация не ожидалась")
	}
	if len(result.Slots) != 8 {
		t.Fatalf("ожидалось 8 слотов, получено %d", len(result.Slots))
	}

	date := localDay(2026, time.September, 2)
	for i, slot := range result.Slots {
		if !slot.IsAvailable {
			t.Errorf("слот %d должен быть доступен", i)
		}
		if !slot.StartTime.Equal(date.Add(time.Duration(9+i) * time.Hour)) {
			t.Errorf("слот %d начинается в %s", i, slot.StartTime)
		}
	}
}

func TestComputeSlots_BookingMarksSlot(t *testing.T) {
	date := localDay(2026, time.September, 2)
	now := localDay(2026, time.September, 1)

	showings := &fakeShowingRepo{booked: []domain.Showing{
		{
			StartTime: date.Add(10 * time.Hour),
			EndTime:   date.Add(11 * time.Hour),
			Status:    domain.ShowingStatusPending,
		},
	}}

	svc := newTestService(&fakeAvailabilityRepo{}, showings, now)

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	for _, slot := range result.Slots {
		wantAvailable := !slot.StartTime.Equal(date.Add(10 * time.Hour))
		if slot.IsAvailable != wantAvailable {
			t.Errorf("слот %s: доступность %v", slot.StartTime, slot.IsAvailable)
		}
	}
}

func TestComputeSlots_DeclinedBookingIgnored(t *testing.T) {
	date := localDay(2026, time.September, 2)

	showings := &fakeShowingRepo{booked: []domain.Showing{
		{
			StartTime: date.Add(10 * time.Hour),
			EndTime:   date.Add(11 * time.Hour),
			Status:    domain.ShowingStatusDeclined,
		},
	}}

	svc := newTestService(&fakeAvailabilityRepo{}, showings, localDay(2026, time.September, 1))

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	for _, slot := range result.Slots {
		if !slot.IsAvailable {
			t.Errorf("слот %s не должен быть занят отклоненным показом", slot.StartTime)
		}
	}
}

func TestComputeSlots_TodayDropsPastSlots(t *testing.T) {
	now := localDay(2026, time.September, 2).Add(10*time.Hour + 30*time.Minute)
	svc := newTestService(&fakeAvailabilityRepo{}, &fakeShowingRepo{}, now)

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	// 09:00 и 10:00 в прошлом, остаются 11:00..16:00.
	if len(result.Slots) != 6 {
		t.Fatalf("ожидалось 6 слотов, получено %d", len(result.Slots))
	}
	if !result.Slots[0].StartTime.Equal(localDay(2026, time.September, 2).Add(11 * time.Hour)) {
		t.Fatalf("первый слот %s, ожидалось 11:00", result.Slots[0].StartTime)
	}
}

func TestComputeSlots_BookingLookupFailureFailsOpen(t *testing.T) {
	showings := &fakeShowingRepo{err: errors.New("соединение разорвано")}
	svc := newTestService(&fakeAvailabilityRepo{}, showings, localDay(2026, time.September, 1))

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ошибка чтения показов не должна быть фатальной: %v", err)
	}

	if !result.Degraded {
		t.Error("ожидался флаг Degraded")
	}
	if len(result.Slots) != 8 {
		t.Fatalf("ожидалось 8 слотов, получено %d", len(result.Slots))
	}
	for _, slot := range result.Slots {
		if !slot.IsAvailable {
			t.Errorf("при деградации все слоты должны оставаться доступными")
		}
	}
}

func TestComputeSlots_WindowLookupFailureFallsBack(t *testing.T) {
	windows := &fakeAvailabilityRepo{err: errors.New("таймаут запроса")}
	svc := newTestService(windows, &fakeShowingRepo{}, localDay(2026, time.September, 1))

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ошибка чтения окна не должна быть фатальной: %v", err)
	}

	if result.Degraded {
		t.Error("сбой окна не включает флаг Degraded")
	}
	if len(result.Slots) != 8 {
		t.Fatalf("ожидалось окно по умолчанию на 8 слотов, получено %d", len(result.Slots))
	}
}

func TestComputeSlots_SellerWindowUsed(t *testing.T) {
	windows := &fakeAvailabilityRepo{window: &domain.AvailabilityWindow{
		SellerID:    2,
		PropertyID:  1,
		DayOfWeek:   3,
		StartTime:   "10:00",
		EndTime:     "12:00",
		SlotMinutes: 30,
		IsAvailable: true,
	}}

	svc := newTestService(windows, &fakeShowingRepo{}, localDay(2026, time.September, 1))

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	if len(result.Slots) != 4 {
		t.Fatalf("ожидалось 4 получасовых слота, получено %d", len(result.Slots))
	}

	date := localDay(2026, time.September, 2)
	if !result.Slots[0].StartTime.Equal(date.Add(10 * time.Hour)) {
		t.Fatalf("первый слот %s, ожидалось 10:00", result.Slots[0].StartTime)
	}
}

func TestComputeSlots_UnavailableWindowFallsBack(t *testing.T) {
	windows := &fakeAvailabilityRepo{window: &domain.AvailabilityWindow{
		StartTime:   "10:00",
		EndTime:     "12:00",
		SlotMinutes: 30,
		IsAvailable: false,
	}}

	svc := newTestService(windows, &fakeShowingRepo{}, localDay(2026, time.September, 1))

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	if len(result.Slots) != 8 {
		t.Fatalf("окно с is_available=false должно игнорироваться, получено %d слотов", len(result.Slots))
	}
}

func TestComputeSlots_CorruptWindowClockFallsBack(t *testing.T) {
	windows := &fakeAvailabilityRepo{window: &domain.AvailabilityWindow{
		StartTime:   "25:61",
		EndTime:     "12:00",
		SlotMinutes: 30,
		IsAvailable: true,
	}}

	svc := newTestService(windows, &fakeShowingRepo{}, localDay(2026, time.September, 1))

	result, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("испорченное окно не должно быть фатальным: %v", err)
	}

	if len(result.Slots) != 8 {
		t.Fatalf("ожидалось окно по умолчанию на 8 слотов, получено %d", len(result.Slots))
	}
}

func TestComputeSlots_Deterministic(t *testing.T) {
	date := localDay(2026, time.September, 2)
	showings := &fakeShowingRepo{booked: []domain.Showing{
		{
			StartTime: date.Add(13 * time.Hour),
			EndTime:   date.Add(14 * time.Hour),
			Status:    domain.ShowingStatusConfirmed,
		},
	}}

	svc := newTestService(&fakeAvailabilityRepo{}, showings, localDay(2026, time.September, 1))

	first, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}
	second, err := svc.ComputeSlots(context.Background(), 1, 2, "2026-09-02")
	if err != nil {
		t.Fatalf("ComputeSlots: %v", err)
	}

	if len(first.Slots) != len(second.Slots) {
		t.Fatalf("повторный вызов дал другое число слотов: %d и %d", len(first.Slots), len(second.Slots))
	}
	for i := range first.Slots {
		if !first.Slots[i].StartTime.Equal(second.Slots[i].StartTime) ||
			first.Slots[i].IsAvailable != second.Slots[i].IsAvailable {
			t.Fatalf("слот %d отличается между вызовами", i)
		}
	}
}
