package domain

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// APIKeyRegistry maps static API keys to the identity they belong to.
type APIKeyRegistry struct {
	keys map[string]string
}

// ParseAPIKeys reads "key:identity,key2:identity2".
func ParseAPIKeys(raw string) (*APIKeyRegistry, error) {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, identity, ok := strings.Cut(pair, ":")
		key, identity = strings.TrimSpace(key), strings.TrimSpace(identity)
		if !ok || key == "" || identity == "" {
			return nil, fmt.Errorf("%w: malformed API key entry %q, expected key:identity", ErrConfiguration, pair)
		}
		if _, dup := keys[key]; dup {
			return nil, fmt.Errorf("%w: duplicate API key for identity %q", ErrConfiguration, identity)
		}
		keys[key] = identity
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: at least one API key is required", ErrConfiguration)
	}
	return &APIKeyRegistry{keys: keys}, nil
}

// NewAPIKeyRegistry copies the given mapping.
func NewAPIKeyRegistry(keys map[string]string) *APIKeyRegistry {
	m := make(map[string]string, len(keys))
	for k, v := range keys {
		m[k] = v
	}
	return &APIKeyRegistry{keys: m}
}

// Identify returns the identity for key or ErrUnauthorized.
func (r *APIKeyRegistry) Identify(key string) (string, error) {
	if key == "" {
		return "", ErrUnauthorized
	}
	for k, identity := range r.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return identity, nil
		}
	}
	return "", ErrUnauthorized
}

func (r *APIKeyRegistry) Len() int { return len(r.keys) }
