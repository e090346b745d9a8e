package ratelimit

import (
	"context"
	"time"
)

// Limiter defines the rate limiting interface used by the HTTP layer to
// guard expensive bulk endpoints (export, import).
type Limiter interface {
	Wait(ctx context.Context) error
	Allow() bool
	Reserve() time.Duration
	Reset()
}

// Strategy defines the rate limiting strategy.
type Strategy string

const (
	StrategyTokenBucket Strategy = "token_bucket"
	StrategyFixedWindow Strategy = "fixed_window"
)

// NewLimiter creates a rate limiter based on config.
func NewLimiter(cfg Config) Limiter {
	cfg = applyDefaults(cfg)
	switch cfg.Strategy {
	case StrategyFixedWindow:
		return NewFixedWindow(cfg)
	default:
		return NewTokenBucket(cfg)
	}
}
