package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// TopicPublisher is the publish surface shared by Producer and
// BreakerProducer.
type TopicPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
}

// BreakerConfig holds circuit breaker settings for the producer.
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is how many probe publishes are allowed in half-open state.
	MaxRequests uint32

	// Interval is the closed-state period after which failure counts reset.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureRatio trips the breaker when this fraction of publishes fail.
	FailureRatio float64

	// MinRequests is the minimum sample size before the ratio is evaluated.
	MinRequests uint32
}

// DefaultBreakerConfig returns breaker settings for a best-effort event
// stream: trip fast, probe every 30 seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var producerBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "kafka_producer_breaker_state",
		Help: "Current state of the Kafka producer circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ErrPublisherOpen is returned while the breaker rejects publishes.
var ErrPublisherOpen = gobreaker.ErrOpenState

// BreakerProducer wraps a publisher with a circuit breaker so a broker
// outage fails publishes immediately instead of stalling every request on a
// write timeout.
type BreakerProducer struct {
	inner   TopicPublisher
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
	name    string
}

// NewBreakerProducer wraps inner with a circuit breaker configured by cfg.
func NewBreakerProducer(inner TopicPublisher, cfg BreakerConfig, logger *slog.Logger) *BreakerProducer {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("kafka producer breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			producerBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	}

	producerBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerProducer{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger,
		name:    cfg.Name,
	}
}

// Publish forwards to the wrapped publisher through the breaker. While the
// breaker is open it returns ErrPublisherOpen without touching the broker.
func (b *BreakerProducer) Publish(ctx context.Context, topic string, event *Event) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.inner.Publish(ctx, topic, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.DebugContext(ctx, "event dropped, kafka breaker open",
			slog.String("breaker", b.name),
			slog.String("topic", topic),
		)
		return ErrPublisherOpen
	}
	return err
}
