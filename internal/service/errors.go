package service

import "errors"

var (
	// ErrInvalidArgument — ошибка вызывающей стороны, запрос отклоняется целиком.
	ErrInvalidArgument = errors.New("некорректные параметры запроса")

	// ErrForbidden — операция над чужим ресурсом.
	ErrForbidden = errors.New("доступ запрещен")
)

func PointerTo[T any](v T) *T {
	return &v
}
