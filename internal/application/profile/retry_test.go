package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/materiales-portal/internal/application/profile"
	"github.com/jhoicas/materiales-portal/internal/domain"
)

func TestRetryPolicy_Do(t *testing.T) {
	errOtro := errors.New("otro")

	tests := []struct {
		name         string
		policy       profile.RetryPolicy
		results      []error
		beforeErr    error
		wantAttempts int
		wantBefore   int
		wantErr      error
	}{
		{
			name:         "éxito al primer intento",
			policy:       profile.PermissionRetry(),
			results:      []error{nil},
			wantAttempts: 1,
		},
		{
			name:         "permiso denegado y luego éxito",
			policy:       profile.PermissionRetry(),
			results:      []error{domain.ErrPermissionDenied, nil},
			wantAttempts: 2,
			wantBefore:   1,
		},
		{
			name:         "permiso denegado dos veces",
			policy:       profile.PermissionRetry(),
			results:      []error{domain.ErrPermissionDenied, domain.ErrPermissionDenied},
			wantAttempts: 2,
			wantBefore:   1,
			wantErr:      domain.ErrPermissionDenied,
		},
		{
			name:         "error no reintentable",
			policy:       profile.PermissionRetry(),
			results:      []error{errOtro},
			wantAttempts: 1,
			wantErr:      errOtro,
		},
		{
			name:         "falla la revalidación",
			policy:       profile.PermissionRetry(),
			results:      []error{domain.ErrPermissionDenied},
			beforeErr:    domain.ErrUnauthenticated,
			wantAttempts: 1,
			wantBefore:   1,
			wantErr:      domain.ErrUnauthenticated,
		},
		{
			name:         "sin reintento",
			policy:       profile.NoRetry(),
			results:      []error{domain.ErrPermissionDenied},
			wantAttempts: 1,
			wantErr:      domain.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts, before := 0, 0
			err := tt.policy.Do(context.Background(),
				func(context.Context) error {
					before++
					return tt.beforeErr
				},
				func(context.Context) error {
					err := tt.results[attempts]
					attempts++
					return err
				},
			)
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantBefore, before)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_ContextoCanceladoEntreIntentos(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := profile.PermissionRetry().Do(ctx, nil, func(context.Context) error {
		attempts++
		cancel()
		return domain.ErrPermissionDenied
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
