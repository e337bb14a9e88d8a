package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starswipe/starswipe/internal/asset"
	"github.com/starswipe/starswipe/internal/auth"
	"github.com/starswipe/starswipe/internal/events"
	"github.com/starswipe/starswipe/internal/history"
)

// Service is the transaction engine. Every mutating operation runs under the
// card's lock: authorize, load, validate, compute the new state, settle through
// the asset gateway, persist, then notify. A gateway failure aborts the whole
// operation with no persisted mutation and no event.
type Service struct {
	repo     Repository
	gateway  asset.Gateway
	config   asset.ConfigStore
	authz    auth.Authorizer
	history  history.Repository
	notifier events.Notifier
	logger   *slog.Logger
	locks    *lockTable

	// now is the charge-time clock for the daily window; replaced in tests.
	now func() time.Time
}

// NewService wires the transaction engine.
func NewService(repo Repository, gateway asset.Gateway, config asset.ConfigStore,
	authz auth.Authorizer, hist history.Repository, notifier events.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		config:   config,
		authz:    authz,
		history:  hist,
		notifier: notifier,
		logger:   logger,
		locks:    newLockTable(),
		now:      time.Now,
	}
}

// RegisterInput captures the data required to register a card.
type RegisterInput struct {
	Owner       auth.Principal
	CardID      string
	CardAddress string
	DailyLimit  int64
	PIN         string
}

// TopUpInput captures the data required to fund a card.
type TopUpInput struct {
	Owner  auth.Principal
	CardID string
	Amount int64
}

// ChargeInput captures the data required for a point-of-sale charge.
type ChargeInput struct {
	CardAddress auth.Principal
	CardID      string
	Amount      int64
	Merchant    string
	MerchantID  string
	PIN         string
}

// WithdrawInput captures the data required to withdraw funds to the owner.
// Amount zero withdraws the full balance.
type WithdrawInput struct {
	Owner  auth.Principal
	CardID string
	Amount int64
}

// SetStatusInput captures an explicit freeze/unfreeze request.
type SetStatusInput struct {
	Owner    auth.Principal
	CardID   string
	IsActive bool
}

// Register creates a new inactive card with a zero balance.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Card, error) {
	if !s.authz.Verify(in.Owner) {
		return Card{}, auth.ErrUnauthorized
	}

	unlock := s.lock(in.CardID)
	defer unlock()

	// A duplicate card_id wins over every other validation, whatever the
	// second call's arguments are.
	if _, err := s.repo.Get(ctx, in.CardID); err == nil {
		return Card{}, ErrCardAlreadyExists
	} else if !errors.Is(err, ErrCardNotFound) {
		return Card{}, err
	}

	if in.DailyLimit <= 0 {
		return Card{}, ErrInvalidDailyLimit
	}

	c := Card{
		CardID:      in.CardID,
		CardAddress: in.CardAddress,
		Owner:       in.Owner.Address,
		DailyLimit:  in.DailyLimit,
		IsActive:    false,
		CreatedAt:   s.now().UTC(),
		UpdatedAt:   s.now().UTC(),
	}

	if in.PIN != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.PIN), bcrypt.DefaultCost)
		if err != nil {
			return Card{}, fmt.Errorf("hash pin: %w", err)
		}
		c.PINHash = hash
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Card{}, err
	}

	s.publish(ctx, events.KindCardRegistered, events.CardRegistered{
		CardID:      c.CardID,
		CardAddress: c.CardAddress,
		Owner:       c.Owner,
		DailyLimit:  c.DailyLimit,
	})
	return c, nil
}

// TopUp moves funds from the owner into custody and credits the card. The
// first successful top-up activates the card.
func (s *Service) TopUp(ctx context.Context, in TopUpInput) (Card, error) {
	if !s.authz.Verify(in.Owner) {
		return Card{}, auth.ErrUnauthorized
	}

	unlock := s.lock(in.CardID)
	defer unlock()

	c, err := s.repo.Get(ctx, in.CardID)
	if err != nil {
		return Card{}, err
	}
	if in.Owner.Address != c.Owner {
		return Card{}, ErrNotCardOwner
	}
	if in.Amount < MinTopUp {
		return Card{}, ErrInvalidAmount
	}
	if err := s.assetConfigured(ctx); err != nil {
		return Card{}, err
	}

	updated := c
	updated.Balance += in.Amount
	if !updated.IsActive {
		updated.IsActive = true
	}

	if err := s.settleAndPersist(ctx, c.Owner, asset.CustodyAccount, in.Amount, updated); err != nil {
		return Card{}, err
	}

	s.record(ctx, history.Record{
		Kind:         history.KindTopUp,
		CardID:       c.CardID,
		Amount:       in.Amount,
		Counterparty: c.Owner,
		BalanceAfter: updated.Balance,
	})
	s.publish(ctx, events.KindCardToppedUp, events.CardToppedUp{
		CardID:     c.CardID,
		Amount:     in.Amount,
		NewBalance: updated.Balance,
	})
	return updated, nil
}

// Charge authorizes a point-of-sale payment and pays the merchant out of
// custody. The daily window is evaluated at charge time: spent_today resets
// when a full window has elapsed since the last charge, before the cap check.
func (s *Service) Charge(ctx context.Context, in ChargeInput) (Card, error) {
	if !s.authz.Verify(in.CardAddress) {
		return Card{}, auth.ErrUnauthorized
	}

	unlock := s.lock(in.CardID)
	defer unlock()

	c, err := s.repo.Get(ctx, in.CardID)
	if err != nil {
		return Card{}, err
	}
	if in.CardAddress.Address != c.CardAddress {
		return Card{}, ErrNotCardAddress
	}
	if len(c.PINHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(c.PINHash, []byte(in.PIN)); err != nil {
			return Card{}, auth.ErrUnauthorized
		}
	}
	if !c.IsActive {
		return Card{}, ErrCardInactive
	}
	if in.Amount <= 0 {
		return Card{}, ErrInvalidAmount
	}
	// The payout destination must be a real address; an empty one would move
	// custody funds into an unowned account.
	if in.Merchant == "" {
		return Card{}, ErrInvalidCardAddress
	}
	if c.Balance < in.Amount {
		return Card{}, ErrInsufficientBalance
	}

	now := s.now().UTC().Unix()

	updated := c
	if now >= updated.LastSpendDate+SpendWindow {
		updated.SpentToday = 0
	}
	if updated.SpentToday+in.Amount > updated.DailyLimit {
		return Card{}, ErrDailyLimitExceeded
	}

	if err := s.assetConfigured(ctx); err != nil {
		return Card{}, err
	}

	updated.Balance -= in.Amount
	updated.SpentToday += in.Amount
	updated.LastSpendDate = now
	// Draining the balance with a charge does not deactivate the card; only a
	// withdrawal to zero or an explicit status change does.

	if err := s.settleAndPersist(ctx, asset.CustodyAccount, in.Merchant, in.Amount, updated); err != nil {
		return Card{}, err
	}

	s.record(ctx, history.Record{
		Kind:         history.KindCharge,
		CardID:       c.CardID,
		Amount:       in.Amount,
		Counterparty: in.Merchant,
		MerchantID:   in.MerchantID,
		BalanceAfter: updated.Balance,
	})
	s.publish(ctx, events.KindTransactionProcessed, events.TransactionProcessed{
		CardID:           c.CardID,
		Amount:           in.Amount,
		Merchant:         in.Merchant,
		MerchantID:       in.MerchantID,
		RemainingBalance: updated.Balance,
	})
	return updated, nil
}

// Withdraw moves funds from custody back to the owner. A zero amount empties
// the card; draining the balance to zero deactivates it.
func (s *Service) Withdraw(ctx context.Context, in WithdrawInput) (Card, error) {
	if !s.authz.Verify(in.Owner) {
		return Card{}, auth.ErrUnauthorized
	}

	unlock := s.lock(in.CardID)
	defer unlock()

	c, err := s.repo.Get(ctx, in.CardID)
	if err != nil {
		return Card{}, err
	}
	if in.Owner.Address != c.Owner {
		return Card{}, ErrNotCardOwner
	}

	amount := in.Amount
	if amount == 0 {
		amount = c.Balance
	}
	if amount <= 0 {
		return Card{}, ErrInvalidAmount
	}
	if c.Balance < amount {
		return Card{}, ErrInsufficientBalance
	}
	if err := s.assetConfigured(ctx); err != nil {
		return Card{}, err
	}

	updated := c
	updated.Balance -= amount
	if updated.Balance == 0 {
		updated.IsActive = false
	}

	if err := s.settleAndPersist(ctx, asset.CustodyAccount, c.Owner, amount, updated); err != nil {
		return Card{}, err
	}

	s.record(ctx, history.Record{
		Kind:         history.KindWithdraw,
		CardID:       c.CardID,
		Amount:       amount,
		Counterparty: c.Owner,
		BalanceAfter: updated.Balance,
	})
	s.publish(ctx, events.KindCardWithdrawn, events.CardWithdrawn{
		CardID:           c.CardID,
		Amount:           amount,
		RemainingBalance: updated.Balance,
	})
	return updated, nil
}

// SetStatus unconditionally overwrites the card's active flag.
func (s *Service) SetStatus(ctx context.Context, in SetStatusInput) (Card, error) {
	if !s.authz.Verify(in.Owner) {
		return Card{}, auth.ErrUnauthorized
	}

	unlock := s.lock(in.CardID)
	defer unlock()

	c, err := s.repo.Get(ctx, in.CardID)
	if err != nil {
		return Card{}, err
	}
	if in.Owner.Address != c.Owner {
		return Card{}, ErrNotCardOwner
	}

	c.IsActive = in.IsActive
	if err := s.repo.Update(ctx, c); err != nil {
		return Card{}, err
	}

	s.publish(ctx, events.KindCardStatusChanged, events.CardStatusChanged{
		CardID:   c.CardID,
		IsActive: c.IsActive,
	})
	return c, nil
}

// Get returns the card record. No authorization required.
func (s *Service) Get(ctx context.Context, cardID string) (Card, error) {
	return s.repo.Get(ctx, cardID)
}

// AssetContract returns the configured settlement asset reference.
func (s *Service) AssetContract(ctx context.Context) (string, error) {
	contract, err := s.config.Get(ctx)
	if errors.Is(err, asset.ErrNotConfigured) {
		return "", ErrAssetNotConfigured
	}
	return contract, err
}

func (s *Service) lock(cardID string) func() {
	l := s.locks.get(cardID)
	l.Lock()
	return l.Unlock
}

func (s *Service) assetConfigured(ctx context.Context) error {
	if _, err := s.config.Get(ctx); err != nil {
		if errors.Is(err, asset.ErrNotConfigured) {
			return ErrAssetNotConfigured
		}
		return err
	}
	return nil
}

// settleAndPersist moves funds through the gateway and then writes the updated
// record. If persistence fails after a successful transfer, a compensating
// reverse transfer is attempted so the ledger never drifts from actual custody.
func (s *Service) settleAndPersist(ctx context.Context, from, to string, amount int64, updated Card) error {
	if err := s.gateway.Transfer(ctx, from, to, amount); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		if revErr := s.gateway.Transfer(ctx, to, from, amount); revErr != nil {
			s.logger.Error("compensating transfer failed; custody and ledger diverged",
				slog.String("card_id", updated.CardID),
				slog.Int64("amount", amount),
				slog.Any("error", revErr))
		}
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, rec history.Record) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(ctx, rec); err != nil {
		s.logger.Warn("record history", slog.String("card_id", rec.CardID), slog.Any("error", err))
	}
}

func (s *Service) publish(ctx context.Context, kind string, payload any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, kind, payload); err != nil {
		s.logger.Warn("publish event", slog.String("kind", kind), slog.Any("error", err))
	}
}
