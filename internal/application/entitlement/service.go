package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Option configures the entitlement services and the Coordinator
type Option func(*base)

// WithEventPublisher publishes the domain events of every committed unit of work
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(b *base) {
		b.publisher = publisher
	}
}

// WithNotifier sets the sink for failure notifications
func WithNotifier(notifier shared.Notifier) Option {
	return func(b *base) {
		if notifier != nil {
			b.notifier = notifier
		}
	}
}

// WithClock overrides the source of "today" for read-time membership expiry
func WithClock(clock func() time.Time) Option {
	return func(b *base) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithCurrency sets the ledger currency used for balances
func WithCurrency(currency valueobject.Currency) Option {
	return func(b *base) {
		if currency != "" {
			b.currency = currency
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics records ledger metrics
func WithMetrics(m *telemetry.LedgerMetrics) Option {
	return func(b *base) {
		b.metrics = m
	}
}

// base holds what every entitlement service shares
type base struct {
	scope     TransactionScope
	repos     TransactionalRepositories
	publisher shared.EventPublisher
	notifier  shared.Notifier
	clock     func() time.Time
	currency  valueobject.Currency
	logger    *zap.Logger
	metrics   *telemetry.LedgerMetrics
}

func newBase(scope TransactionScope, repos TransactionalRepositories, opts ...Option) base {
	b := base{
		scope:    scope,
		repos:    repos,
		notifier: shared.NopNotifier{},
		clock:    time.Now,
		currency: valueobject.DefaultCurrency,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) now() time.Time {
	return b.clock()
}

func (b *base) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, b.logger)
}

// atomic runs fn as one unit of work. Domain errors raised inside fn are returned
// unchanged; any other failure is reported as an AtomicityError. In both cases the
// transaction was rolled back.
func (b *base) atomic(ctx context.Context, op string, fn func(repos TransactionalRepositories) error) error {
	err := b.scope.Execute(ctx, fn)
	if err == nil {
		return nil
	}
	if shared.IsDomainError(err) {
		return err
	}
	b.log(ctx).Error("Unit of work rolled back",
		zap.String("operation", op),
		zap.Error(err))
	return shared.NewAtomicityError(op, err)
}

// publishDomainEvents publishes and clears the pending events of committed aggregates.
// Publishing never fails the operation; the bus logs handler errors.
func (b *base) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if b.publisher == nil || len(events) == 0 {
		return
	}
	_ = b.publisher.Publish(ctx, events...)
}

// requireCustomer fails with CUSTOMER_NOT_FOUND for unknown customers
func requireCustomer(ctx context.Context, repos TransactionalRepositories, customerID uuid.UUID) error {
	ok, err := repos.CustomerRepo().Exists(ctx, customerID)
	if err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if !ok {
		return shared.ErrCustomerNotFound.WithMessage("customer %s not found", customerID)
	}
	return nil
}
