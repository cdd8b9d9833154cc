package ocr

import (
	"context"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// GuardConfig bounds calls to the external OCR service: a client-side rate
// limit plus a circuit breaker that sheds load once the service starts
// failing consistently.
type GuardConfig struct {
	RequestsPerMin   float64
	Burst            int
	BreakerThreshold uint32
}

// Guarded wraps a Provider with rate limiting and a circuit breaker.
type Guarded struct {
	inner   Provider
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
}

func NewGuarded(inner Provider, cfg GuardConfig) *Guarded {
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 30
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name: "ocr",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
	})

	return &Guarded{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerMin/60.0), cfg.Burst),
		breaker: breaker,
	}
}

func (g *Guarded) Text(ctx context.Context, imagePath string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.breaker.Execute(func() (string, error) {
		return g.inner.Text(ctx, imagePath)
	})
}
