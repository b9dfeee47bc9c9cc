package availability

import (
	"testing"
	"time"

	"doma/internal/domain"
)

func day(t *testing.T, y int, m time.Month, d int) time.Time {
	t.Helper()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func showing(start, end time.Time, status domain.ShowingStatus) domain.Showing {
	return domain.Showing{StartTime: start, EndTime: end, Status: status}
}

func TestGenerateSlots_FullDay(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	start, end, err := WindowOnDate(date, "09:00", "17:00")
	if err != nil {
		t.Fatalf("WindowOnDate: %v", err)
	}

	slots := GenerateSlots(start, end, time.Hour)
	if len(slots) != 8 {
		t.Fatalf("ожидалось 8 слотов, получено %d", len(slots))
	}

	for i, slot := range slots {
		wantStart := date.Add(time.Duration(9+i) * time.Hour)
		if !slot.StartTime.Equal(wantStart) {
			t.Errorf("слот %d: начало %s, ожидалось %s", i, slot.StartTime, wantStart)
		}
		if !slot.EndTime.Equal(wantStart.Add(time.Hour)) {
			t.Errorf("слот %d: конец %s, ожидалось %s", i, slot.EndTime, wantStart.Add(time.Hour))
		}
		if !slot.IsAvailable {
			t.Errorf("слот %d должен быть доступен сразу после генерации", i)
		}
		if i > 0 && !slots[i-1].EndTime.Equal(slot.StartTime) {
			t.Errorf("слоты %d и %d не смежны", i-1, i)
		}
	}
}

func TestGenerateSlots_NoPartialTrailingSlot(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	start, end, err := WindowOnDate(date, "09:00", "10:30")
	if err != nil {
		t.Fatalf("WindowOnDate: %v", err)
	}

	slots := GenerateSlots(start, end, time.Hour)
	if len(slots) != 1 {
		t.Fatalf("ожидался 1 слот, получено %d", len(slots))
	}
	if slots[0].EndTime.After(end) {
		t.Fatalf("слот выходит за границу окна: %s > %s", slots[0].EndTime, end)
	}
}

func TestGenerateSlots_DegenerateWindow(t *testing.T) {
	date := day(t, 2026, time.September, 1)

	cases := []struct {
		name       string
		start, end string
	}{
		{"start equals end", "12:00", "12:00"},
		{"start after end", "17:00", "09:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := WindowOnDate(date, tc.start, tc.end)
			if err != nil {
				t.Fatalf("WindowOnDate: %v", err)
			}
			if slots := GenerateSlots(start, end, time.Hour); len(slots) != 0 {
				t.Fatalf("ожидался пустой результат, получено %d слотов", len(slots))
			}
		})
	}
}

func TestGenerateSlots_InvalidDuration(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	start, end, _ := WindowOnDate(date, "09:00", "17:00")

	if slots := GenerateSlots(start, end, 0); slots != nil {
		t.Fatalf("нулевая длительность должна давать nil, получено %v", slots)
	}
	if slots := GenerateSlots(start, end, -time.Hour); slots != nil {
		t.Fatalf("отрицательная длительность должна давать nil, получено %v", slots)
	}
}

func TestWindowOnDate_BadClock(t *testing.T) {
	date := day(t, 2026, time.September, 1)

	if _, _, err := WindowOnDate(date, "9 утра", "17:00"); err == nil {
		t.Fatal("ожидалась ошибка для неверного времени начала")
	}
	if _, _, err := WindowOnDate(date, "09:00", "25:99"); err == nil {
		t.Fatal("ожидалась ошибка для неверного времени окончания")
	}
}

func TestMarkBooked_OverlapMarksSlot(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	start, end, _ := WindowOnDate(date, "09:00", "17:00")
	slots := GenerateSlots(start, end, time.Hour)

	booked := []domain.Showing{
		showing(date.Add(10*time.Hour), date.Add(11*time.Hour), domain.ShowingStatusConfirmed),
	}

	slots = MarkBooked(slots, booked)

	for i, slot := range slots {
		wantAvailable := i != 1 // слот 10:00-11:00
		if slot.IsAvailable != wantAvailable {
			t.Errorf("слот %s: доступность %v, ожидалось %v", slot.StartTime, slot.IsAvailable, wantAvailable)
		}
	}
}

func TestMarkBooked_TouchingEndpointsDoNotOverlap(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	slots := []domain.TimeSlot{
		{StartTime: date.Add(9 * time.Hour), EndTime: date.Add(10 * time.Hour), IsAvailable: true},
		{StartTime: date.Add(11 * time.Hour), EndTime: date.Add(12 * time.Hour), IsAvailable: true},
	}

	// Показ 10:00-11:00 касается обоих слотов концами, но не пересекает их.
	booked := []domain.Showing{
		showing(date.Add(10*time.Hour), date.Add(11*time.Hour), domain.ShowingStatusPending),
	}

	slots = MarkBooked(slots, booked)
	for _, slot := range slots {
		if !slot.IsAvailable {
			t.Errorf("слот %s помечен занятым без пересечения", slot.StartTime)
		}
	}
}

func TestMarkBooked_IdenticalBoundsOverlap(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	slots := []domain.TimeSlot{
		{StartTime: date.Add(10 * time.Hour), EndTime: date.Add(11 * time.Hour), IsAvailable: true},
	}
	booked := []domain.Showing{
		showing(date.Add(10*time.Hour), date.Add(11*time.Hour), domain.ShowingStatusPending),
	}

	slots = MarkBooked(slots, booked)
	if slots[0].IsAvailable {
		t.Fatal("слот с совпадающими границами должен быть занят")
	}
}

func TestMarkBooked_DeclinedAndCancelledDoNotOccupy(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	start, end, _ := WindowOnDate(date, "09:00", "17:00")

	for _, status := range []domain.ShowingStatus{domain.ShowingStatusDeclined, domain.ShowingStatusCancelled} {
		slots := GenerateSlots(start, end, time.Hour)
		booked := []domain.Showing{
			showing(date.Add(10*time.Hour), date.Add(11*time.Hour), status),
		}

		slots = MarkBooked(slots, booked)
		for _, slot := range slots {
			if !slot.IsAvailable {
				t.Errorf("статус %s: слот %s не должен быть занят", status, slot.StartTime)
			}
		}
	}
}

func TestMarkBooked_MultipleOverlapsIdempotent(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	slots := []domain.TimeSlot{
		{StartTime: date.Add(10 * time.Hour), EndTime: date.Add(11 * time.Hour), IsAvailable: true},
	}
	booked := []domain.Showing{
		showing(date.Add(10*time.Hour), date.Add(10*time.Hour+30*time.Minute), domain.ShowingStatusPending),
		showing(date.Add(10*time.Hour+30*time.Minute), date.Add(11*time.Hour), domain.ShowingStatusConfirmed),
	}

	slots = MarkBooked(slots, booked)
	slots = MarkBooked(slots, booked)

	if slots[0].IsAvailable {
		t.Fatal("слот должен быть занят")
	}
	if len(slots) != 1 {
		t.Fatalf("повторная фильтрация изменила число слотов: %d", len(slots))
	}
}

func TestDropPast_TodayRemovesStartedSlots(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	start, end, _ := WindowOnDate(date, "09:00", "17:00")
	slots := GenerateSlots(start, end, time.Hour)

	now := date.Add(10*time.Hour + 30*time.Minute)
	slots = DropPast(slots, now, date)

	// 09:00 и 10:00 начались не позже 10:30, остаются 11:00..16:00.
	if len(slots) != 6 {
		t.Fatalf("ожидалось 6 слотов, получено %d", len(slots))
	}
	if !slots[0].StartTime.Equal(date.Add(11 * time.Hour)) {
		t.Fatalf("первый оставшийся слот %s, ожидалось 11:00", slots[0].StartTime)
	}
}

func TestDropPast_SlotStartingExactlyNowIsRemoved(t *testing.T) {
	date := day(t, 2026, time.September, 1)
	slots := []domain.TimeSlot{
		{StartTime: date.Add(10 * time.Hour), EndTime: date.Add(11 * time.Hour), IsAvailable: true},
	}

	slots = DropPast(slots, date.Add(10*time.Hour), date)
	if len(slots) != 0 {
		t.Fatal("слот, начинающийся ровно сейчас, должен быть отсечен")
	}
}

func TestDropPast_FutureDateKeepsAllSlots(t *testing.T) {
	today := day(t, 2026, time.September, 1)
	tomorrow := day(t, 2026, time.September, 2)

	start, end, _ := WindowOnDate(tomorrow, "09:00", "17:00")
	slots := GenerateSlots(start, end, time.Hour)

	now := today.Add(23 * time.Hour)
	slots = DropPast(slots, now, tomorrow)

	if len(slots) != 8 {
		t.Fatalf("слоты будущей даты не должны отсекаться, получено %d", len(slots))
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, time.September, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, time.September, 1, 0, 1, 0, 0, time.UTC)
	c := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("a и b — один календарный день")
	}
	if SameDay(a, c) {
		t.Error("a и c — разные календарные дни")
	}
}
