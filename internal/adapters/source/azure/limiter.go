package azure

import (
	"context"

	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimitRPS = 5
	minRateLimitRPS     = 1
	maxRateLimitRPS     = 50
)

// Limiter throttles calls to the Azure Resource Manager API.
type Limiter struct {
	limiter *rate.Limiter
	rps     int
	logger  ports.Logger
}

func NewLimiter(rps int, logger ports.Logger) *Limiter {
	limitValue := defaultRateLimitRPS
	if rps >= minRateLimitRPS && rps <= maxRateLimitRPS {
		limitValue = rps
	} else if rps != 0 {
		logger.Warnf(context.Background(), "Invalid Azure API RPS configured (%d), using default %d RPS. Valid range: %d-%d.",
			rps, defaultRateLimitRPS, minRateLimitRPS, maxRateLimitRPS)
	}
	logger.Debugf(context.Background(), "Initialized Azure API rate limiter: %d RPS", limitValue)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(limitValue), limitValue),
		rps:     limitValue,
		logger:  logger,
	}
}

func (l *Limiter) RPS() int {
	return l.rps
}

func (l *Limiter) Wait(ctx context.Context) error {
	err := l.limiter.Wait(ctx)
	if err != nil && ctx.Err() == nil {
		l.logger.Warnf(ctx, "Error waiting for Azure API rate limiter: %v", err)
	}
	return err
}
