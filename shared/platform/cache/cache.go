package cache

import (
	"context"
)

// Cache guarda valores por clave. Los adapters serializan a JSON, así que dest
// y val deben ser tipos serializables.
type Cache interface {
	// Get rellena dest (puntero). Devuelve false, nil en un miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set con ttlSecs <= 0 usa el TTL por defecto del adapter.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	Delete(ctx context.Context, key string) error
}

// Lookup lee key como T. Una caché nil o un error de lectura cuentan como miss:
// la caché nunca debe hacer fallar una lectura que la fuente de verdad puede servir.
func Lookup[T any](ctx context.Context, c Cache, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	var v T
	hit, err := c.Get(ctx, key, &v)
	if err != nil || !hit {
		return nil, false
	}
	return &v, true
}
