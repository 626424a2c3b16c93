// Package resilience guards outbound calls with a circuit breaker.
package resilience

import (
	"context"
	"errors"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/sony/gobreaker/v2"
)

// ErrBreakerOpen is returned when a publish is rejected without being attempted.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// NewCircuitBreaker creates a breaker that trips on consecutive failures or on a high error rate.
// A cancelled caller context is not counted as a broker failure.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[struct{}] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(counts.TotalSuccesses+counts.TotalFailures > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.TotalSuccesses+counts.TotalFailures)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return gobreaker.NewCircuitBreaker[struct{}](st)
}

// BreakerPublisher fails fast while the broker keeps failing.
type BreakerPublisher struct {
	next    messaging.Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher wraps next with the given breaker.
func NewBreakerPublisher(next messaging.Publisher, breaker *gobreaker.CircuitBreaker[struct{}]) *BreakerPublisher {
	return &BreakerPublisher{next: next, breaker: breaker}
}

// Publish forwards the event unless the breaker is open.
func (p *BreakerPublisher) Publish(ctx context.Context, event messaging.Event) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrBreakerOpen, err)
	}
	return err
}

// State reports the current breaker state.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.breaker.State()
}

var _ messaging.Publisher = (*BreakerPublisher)(nil)
