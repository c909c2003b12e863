// Package session implementa el almacén de revocación de sesiones (cierre de sesión antes
// de que el token expire). Redis para despliegues con varias instancias; memoria para una sola.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/materiales-portal/internal/application/auth"
	"github.com/jhoicas/materiales-portal/pkg/config"
	"github.com/redis/go-redis/v9"
)

var _ auth.RevocationStore = (*RedisStore)(nil)

const redisKeyPrefix = "session:revoked:"

// RedisStore guarda los jti revocados con TTL igual al tiempo restante del token.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore conecta con Redis y verifica la conexión.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient usa un cliente ya construido.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Revoke marca el jti como revocado hasta que el token habría expirado.
func (s *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, redisKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: revocar sesión: %w", err)
	}
	return nil
}

// IsRevoked consulta si el jti fue revocado.
func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis: consultar revocación: %w", err)
	}
	return n > 0, nil
}

// Close cierra el cliente.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
