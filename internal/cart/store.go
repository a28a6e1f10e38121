package cart

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"
)

// DefaultMaxIdle is used when a store is created without an idle limit.
const DefaultMaxIdle = 2 * time.Hour

// Store keeps one cart per session id in memory. Callers receive copies;
// a Save replaces the stored cart, so the last write wins. A cart expires
// once it has gone maxIdle without a Load or Save.
type Store struct {
	carts  *ttlcache.Cache[string, *Cart]
	logger zerolog.Logger
}

// NewStore creates an empty session cart store.
func NewStore(maxIdle time.Duration, logger zerolog.Logger) *Store {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}

	s := &Store{
		carts:  ttlcache.New[string, *Cart](ttlcache.WithTTL[string, *Cart](maxIdle)),
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
	s.carts.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Cart]) {
		if reason == ttlcache.EvictionReasonExpired {
			s.logger.Debug().Str("session_id", item.Key()).Msg("idle cart expired")
		}
	})
	return s
}

// Load returns a copy of the session's cart, or an empty cart. Loading
// resets the idle timer.
func (s *Store) Load(sessionID string) *Cart {
	item := s.carts.Get(sessionID)
	if item == nil {
		return New()
	}
	return item.Value().Clone()
}

// Save stores a copy of c for the session.
func (s *Store) Save(sessionID string, c *Cart) {
	s.carts.Set(sessionID, c.Clone(), ttlcache.DefaultTTL)
}

// Delete drops the session's cart.
func (s *Store) Delete(sessionID string) {
	s.carts.Delete(sessionID)
}

// Len returns the number of sessions holding a cart.
func (s *Store) Len() int {
	return s.carts.Len()
}

// Sweep drops every expired cart immediately.
func (s *Store) Sweep() {
	s.carts.DeleteExpired()
}

// Run removes carts as they expire until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.carts.Stop()
	}()
	s.carts.Start()
}
