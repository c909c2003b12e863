package profile

import (
	"context"
	"errors"

	"github.com/jhoicas/materiales-portal/internal/domain"
)

// RetryPolicy reintento acotado de una operación de escritura.
// BeforeRetry corre entre intentos; si falla, no hay más intentos y se devuelve su error.
type RetryPolicy struct {
	MaxAttempts int
	Retryable   func(error) bool
}

// PermissionRetry política del alta de perfil: dos intentos como máximo y solo ante
// permiso denegado (contexto de autorización obsoleto).
func PermissionRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Retryable: func(err error) bool {
			return errors.Is(err, domain.ErrPermissionDenied)
		},
	}
}

// NoRetry un solo intento.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// Do ejecuta op hasta MaxAttempts veces mientras el error sea reintentable.
func (p RetryPolicy) Do(ctx context.Context, beforeRetry func(context.Context) error, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if i > 1 {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if beforeRetry != nil {
				if berr := beforeRetry(ctx); berr != nil {
					return berr
				}
			}
		}
		err = op(ctx)
		if err == nil || p.Retryable == nil || !p.Retryable(err) {
			return err
		}
	}
	return err
}
