// Package availability содержит чистую математику слотов показов:
// генерацию интервалов, проверку пересечений с занятыми показами и
// отсечение прошедшего времени. Пакет не делает I/O.
package availability

import (
	"fmt"
	"time"

	"doma/internal/domain"
)

const clockLayout = "15:04"

// WindowOnDate переносит времена окна "HH:MM" на конкретную дату
// в её локации.
func WindowOnDate(date time.Time, startClock, endClock string) (time.Time, time.Time, error) {
	start, err := time.Parse(clockLayout, startClock)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("неверный формат времени начала %q: %w", startClock, err)
	}

	end, err := time.Parse(clockLayout, endClock)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("неверный формат времени окончания %q: %w", endClock, err)
	}

	y, m, d := date.Date()
	loc := date.Location()

	windowStart := time.Date(y, m, d, start.Hour(), start.Minute(), 0, 0, loc)
	windowEnd := time.Date(y, m, d, end.Hour(), end.Minute(), 0, 0, loc)

	return windowStart, windowEnd, nil
}

// GenerateSlots строит упорядоченную последовательность слотов фиксированной
// длины внутри [windowStart, windowEnd). Неполный хвостовой слот не выдается:
// слот попадает в результат только если целиком помещается в окно.
// Пустое или вырожденное окно дает пустой результат.
func GenerateSlots(windowStart, windowEnd time.Time, duration time.Duration) []domain.TimeSlot {
	if duration <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}

	var slots []domain.TimeSlot
	for cursor := windowStart; !cursor.Add(duration).After(windowEnd); cursor = cursor.Add(duration) {
		slots = append(slots, domain.TimeSlot{
			StartTime:   cursor,
			EndTime:     cursor.Add(duration),
			IsAvailable: true,
		})
	}

	return slots
}

// MarkBooked помечает недоступными слоты, пересекающиеся хотя бы с одним
// показом, занимающим время. Интервалы полуоткрытые: слот, заканчивающийся
// ровно в начале показа, пересечением не считается.
func MarkBooked(slots []domain.TimeSlot, showings []domain.Showing) []domain.TimeSlot {
	for i := range slots {
		for _, showing := range showings {
			if !showing.Status.Occupies() {
				continue
			}
			if slots[i].StartTime.Before(showing.EndTime) && slots[i].EndTime.After(showing.StartTime) {
				slots[i].IsAvailable = false
				break
			}
		}
	}

	return slots
}

// DropPast убирает слоты, начинающиеся не позже now, но только когда
// целевая дата совпадает с сегодняшним календарным днем. Слоты на будущие
// даты не отсекаются независимо от времени суток.
func DropPast(slots []domain.TimeSlot, now, date time.Time) []domain.TimeSlot {
	if !SameDay(now, date) {
		return slots
	}

	filtered := make([]domain.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.StartTime.After(now) {
			filtered = append(filtered, slot)
		}
	}

	return filtered
}

// SameDay сравнивает календарные дни в локации первого аргумента.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
