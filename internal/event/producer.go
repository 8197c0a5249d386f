package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KazimFedxD/FinCore/internal/domain"
	pkgkafka "github.com/KazimFedxD/FinCore/pkg/kafka"
	"github.com/KazimFedxD/FinCore/pkg/logger"
)

// Kafka topic constants for account lifecycle events.
const (
	TopicAccountRegistered            = "fincore.account.registered"
	TopicAccountVerificationRequested = "fincore.account.verification_requested"
	TopicAccountVerified              = "fincore.account.verified"
)

// Aggregate type constant.
const AggregateTypeAccount = "account"

// Source identifier for events originating from this service.
const SourceFincore = "fincore"

// AccountRegisteredData is the payload for an account.registered event.
type AccountRegisteredData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// VerificationRequestedData is the payload for an
// account.verification_requested event. The notification worker consumes it
// and sends the code by email.
type VerificationRequestedData struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// AccountVerifiedData is the payload for an account.verified event.
type AccountVerifiedData struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// Publisher is the transport events are published through. Satisfied by
// pkg/kafka's Producer and BreakerProducer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes account lifecycle events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAccountRegistered publishes an account.registered event.
func (p *Producer) PublishAccountRegistered(ctx context.Context, acc *domain.Account) error {
	data := AccountRegisteredData{
		ID:       acc.ID,
		Email:    acc.Email,
		Username: acc.Username,
	}

	event, err := pkgkafka.NewEvent(TopicAccountRegistered, acc.ID, AggregateTypeAccount, SourceFincore, data)
	if err != nil {
		return fmt.Errorf("create account.registered event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicAccountRegistered, event); err != nil {
		return fmt.Errorf("publish account.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published account.registered event",
		slog.String("account_id", acc.ID),
	)

	return nil
}

// PublishVerificationRequested publishes an account.verification_requested
// event carrying the code to be delivered out-of-band.
func (p *Producer) PublishVerificationRequested(ctx context.Context, acc *domain.Account, code, reason string) error {
	data := VerificationRequestedData{
		AccountID: acc.ID,
		Email:     acc.Email,
		Code:      code,
		Reason:    reason,
	}

	event, err := pkgkafka.NewEvent(TopicAccountVerificationRequested, acc.ID, AggregateTypeAccount, SourceFincore, data)
	if err != nil {
		return fmt.Errorf("create account.verification_requested event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicAccountVerificationRequested, event); err != nil {
		return fmt.Errorf("publish account.verification_requested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published account.verification_requested event",
		slog.String("account_id", acc.ID),
		slog.String("reason", reason),
	)

	return nil
}

// PublishAccountVerified publishes an account.verified event.
func (p *Producer) PublishAccountVerified(ctx context.Context, acc *domain.Account) error {
	data := AccountVerifiedData{
		AccountID: acc.ID,
		Email:     acc.Email,
	}

	event, err := pkgkafka.NewEvent(TopicAccountVerified, acc.ID, AggregateTypeAccount, SourceFincore, data)
	if err != nil {
		return fmt.Errorf("create account.verified event: %w", err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicAccountVerified, event); err != nil {
		return fmt.Errorf("publish account.verified event: %w", err)
	}

	p.logger.DebugContext(ctx, "published account.verified event",
		slog.String("account_id", acc.ID),
	)

	return nil
}
