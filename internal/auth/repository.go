package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid gateway or key")
	ErrGatewayNotFound    = errors.New("gateway not found")
)

// Repository looks up the stored key hash for a gateway.
type Repository interface {
	KeyHash(ctx context.Context, gateway string) (string, error)
}

type staticRepository struct {
	hashes map[string]string
}

// NewStaticRepository serves gateway key hashes held in memory.
func NewStaticRepository(hashes map[string]string) Repository {
	copied := make(map[string]string, len(hashes))
	for name, hash := range hashes {
		copied[name] = hash
	}
	return &staticRepository{hashes: copied}
}

func (r *staticRepository) KeyHash(_ context.Context, gateway string) (string, error) {
	hash, ok := r.hashes[gateway]
	if !ok {
		return "", ErrGatewayNotFound
	}
	return hash, nil
}

// ParseGatewayKeys decodes "name:bcrypt-hash" pairs separated by commas.
// Blank entries are ignored.
func ParseGatewayKeys(raw string) (map[string]string, error) {
	hashes := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, hash, ok := strings.Cut(entry, ":")
		name, hash = strings.TrimSpace(name), strings.TrimSpace(hash)
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("invalid gateway key entry %q", entry)
		}
		hashes[name] = hash
	}
	return hashes, nil
}
