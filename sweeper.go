package auth

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often the sweeper prunes expired refresh
// tokens when no interval is configured.
var DefaultSweepInterval = time.Hour

// TokenSweeper removes expired refresh tokens on a schedule. Expired rows are
// already rejected at refresh time; the sweeper only keeps the table from
// growing without bound.
type TokenSweeper struct {
	tokens   RefreshTokens
	interval time.Duration
	logger   Logger
	timeFunc func() time.Time
}

func NewTokenSweeper(tokens RefreshTokens, interval time.Duration) *TokenSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &TokenSweeper{
		tokens:   tokens,
		interval: interval,
		logger:   defLogger{},
		timeFunc: time.Now,
	}
}

func (s *TokenSweeper) WithLogger(logger Logger) *TokenSweeper {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *TokenSweeper) WithTimeFunc(fn func() time.Time) *TokenSweeper {
	if fn != nil {
		s.timeFunc = fn
	}
	return s
}

// Run blocks, sweeping on every tick until the context is cancelled
func (s *TokenSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("refresh token sweep failed", "error", err)
			}
		}
	}
}

// Sweep deletes every refresh token that expired before now
func (s *TokenSweeper) Sweep(ctx context.Context) (int64, error) {
	removed, err := s.tokens.SweepExpired(ctx, s.timeFunc())
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Debug("swept expired refresh tokens", "count", removed)
	}

	return removed, nil
}
