package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DialFunc opens a pool. Replaceable in tests.
type DialFunc func(ctx context.Context) (*pgxpool.Pool, error)

// Dial connects to Postgres with capped exponential backoff
func Dial(dsn string) DialFunc {
	return func(ctx context.Context) (*pgxpool.Pool, error) {
		var pool *pgxpool.Pool
		op := func() error {
			p, err := pgxpool.New(ctx, dsn)
			if err != nil {
				return err
			}
			if err := p.Ping(ctx); err != nil {
				p.Close()
				return err
			}
			pool = p
			return nil
		}
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 30 * time.Second
		if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
			return nil, err
		}
		return pool, nil
	}
}

// Lazy owns the shared store connection. The pool is opened on first use:
// an already-open pool is returned as-is, callers arriving while a dial is
// in flight wait on that same attempt, and only one dial runs at a time.
// A failed attempt clears the pending state so a later call can retry.
type Lazy struct {
	dial DialFunc

	mu      sync.Mutex
	pool    *pgxpool.Pool
	pending chan struct{}
	err     error
}

// NewLazy creates a connector that dials with the given function on first use
func NewLazy(dial DialFunc) *Lazy {
	return &Lazy{dial: dial}
}

// Acquire returns the shared pool, dialing it if needed
func (l *Lazy) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	for {
		l.mu.Lock()
		if l.pool != nil {
			pool := l.pool
			l.mu.Unlock()
			return pool, nil
		}
		if l.pending != nil {
			wait := l.pending
			l.mu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			l.mu.Lock()
			pool, err := l.pool, l.err
			l.mu.Unlock()
			if pool != nil {
				return pool, nil
			}
			if err != nil {
				return nil, err
			}
			// The attempt we waited on was superseded; start over.
			continue
		}
		pending := make(chan struct{})
		l.pending = pending
		l.mu.Unlock()

		pool, err := l.dial(ctx)

		l.mu.Lock()
		l.pool = pool
		l.err = err
		l.pending = nil
		l.mu.Unlock()
		close(pending)

		if err != nil {
			log.Warn().Err(err).Msg("store connect failed")
			return nil, err
		}
		log.Info().Msg("store connected")
		return pool, nil
	}
}

// Close releases the pool if one was opened
func (l *Lazy) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool != nil {
		l.pool.Close()
		l.pool = nil
	}
}
