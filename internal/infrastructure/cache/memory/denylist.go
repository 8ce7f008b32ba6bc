package memory

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist is a process-local revocation list used when Redis is not configured
type TokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewTokenDenylist creates an empty list
func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke denies tokenID until the given expiry
func (d *TokenDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if !until.After(now) {
		return nil
	}
	d.revoked[tokenID] = until
	d.sweep(now)
	return nil
}

// IsRevoked reports whether tokenID has been revoked
func (d *TokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	return ok && until.After(d.now()), nil
}

// sweep drops entries past their expiry; caller holds mu
func (d *TokenDenylist) sweep(now time.Time) {
	for id, until := range d.revoked {
		if !until.After(now) {
			delete(d.revoked, id)
		}
	}
}
