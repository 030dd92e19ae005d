package utils

import (
	"context"

	"github.com/SversusN/tinyapp/internal/internalerrors"
)

// ValueFromCtx достает из контекста значение нужного типа.
// Нет значения - ErrUserNotFound, другой тип - ErrUserTypeError.
func ValueFromCtx[T any](ctx context.Context, key any) (T, error) {
	var zero T
	v := ctx.Value(key)
	if v == nil {
		return zero, internalerrors.ErrUserNotFound
	}
	typed, ok := v.(T)
	if !ok {
		return zero, internalerrors.ErrUserTypeError
	}
	return typed, nil
}
