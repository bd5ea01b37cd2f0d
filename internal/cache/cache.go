package cache

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultTTL = 300 * time.Second

// Store is the cache capability injected into the service layer. A
// failing store must never fail the surrounding read or write; callers
// treat every error here as a logged warning.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key string, value string, ttl time.Duration) error
	Delete(keys ...string) error
	// DeletePattern drops every key sharing the given prefix. Used for
	// conservative invalidation of the paginated list family.
	DeletePattern(prefix string) error
}

// GetOrLoad implements the read-through contract: return the cached
// snapshot when present, otherwise load from the source of truth and
// repopulate. Cache failures fall through to the loader.
func GetOrLoad[T any](store Store, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		logrus.Warnf("cache: get %s: %v", key, err)
	} else if ok {
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			return value, nil
		}
		logrus.Warnf("cache: decode %s failed, reloading", key)
	}

	value, err := loader()
	if err != nil {
		var zero T
		return zero, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		if err := store.Set(key, string(encoded), ttl); err != nil {
			logrus.Warnf("cache: set %s: %v", key, err)
		}
	}

	return value, nil
}

// Invalidate deletes keys best-effort, logging instead of failing.
func Invalidate(store Store, keys ...string) {
	if err := store.Delete(keys...); err != nil {
		logrus.Warnf("cache: invalidate %v: %v", keys, err)
	}
}

// InvalidatePattern drops a key family best-effort.
func InvalidatePattern(store Store, prefix string) {
	if err := store.DeletePattern(prefix); err != nil {
		logrus.Warnf("cache: invalidate pattern %s: %v", prefix, err)
	}
}
