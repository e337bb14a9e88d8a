package events

import (
	"context"
	"log/slog"
)

// Event kinds, one per committed mutating operation.
const (
	KindCardRegistered       = "card_registered"
	KindCardToppedUp         = "card_topped_up"
	KindTransactionProcessed = "transaction_processed"
	KindCardWithdrawn        = "card_withdrawn"
	KindCardStatusChanged    = "card_status_changed"
)

// CardRegistered announces a newly registered card.
type CardRegistered struct {
	CardID      string `json:"card_id"`
	CardAddress string `json:"card_address"`
	Owner       string `json:"owner"`
	DailyLimit  int64  `json:"daily_limit"`
}

// CardToppedUp announces a completed funding.
type CardToppedUp struct {
	CardID     string `json:"card_id"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
}

// TransactionProcessed announces a completed point-of-sale charge.
type TransactionProcessed struct {
	CardID           string `json:"card_id"`
	Amount           int64  `json:"amount"`
	Merchant         string `json:"merchant"`
	MerchantID       string `json:"merchant_id"`
	RemainingBalance int64  `json:"remaining_balance"`
}

// CardWithdrawn announces a completed withdrawal back to the owner.
type CardWithdrawn struct {
	CardID           string `json:"card_id"`
	Amount           int64  `json:"amount"`
	RemainingBalance int64  `json:"remaining_balance"`
}

// CardStatusChanged announces an explicit freeze/unfreeze.
type CardStatusChanged struct {
	CardID   string `json:"card_id"`
	IsActive bool   `json:"is_active"`
}

// Notifier receives one structured notification per committed operation.
// Ordering and durability are the sink's concern, not the caller's.
type Notifier interface {
	Publish(ctx context.Context, kind string, payload any) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Publish logs the event with its kind and payload.
func (n *LoggerNotifier) Publish(_ context.Context, kind string, payload any) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("event", slog.String("kind", kind), slog.Any("payload", payload))
	return nil
}

// MultiNotifier fans a notification out to several sinks. The first error is
// returned but every sink is attempted.
type MultiNotifier []Notifier

// Publish delivers the event to all wrapped notifiers.
func (m MultiNotifier) Publish(ctx context.Context, kind string, payload any) error {
	var firstErr error
	for _, n := range m {
		if err := n.Publish(ctx, kind, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
