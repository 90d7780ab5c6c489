// Package store provides the document stores behind the domain repositories.
package store

import (
	"fmt"

	"github.com/tastybyte/orderbot/internal/domain"
)

// Store types accepted by Open
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Open builds the store selected by storeType. The returned close function
// releases any connection and is never nil.
func Open(storeType, redisURL, prefix string) (domain.Store, func() error, error) {
	switch storeType {
	case TypeMemory, "":
		return NewMemoryStore(), func() error { return nil }, nil
	case TypeRedis:
		s, err := NewRedisStore(redisURL, prefix)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", storeType)
	}
}
