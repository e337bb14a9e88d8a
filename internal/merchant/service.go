package merchant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service manages the merchant directory.
type Service struct {
	repo Repository
}

// NewService creates a merchant service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures data required to register a merchant.
type RegisterInput struct {
	Name          string
	PayoutAddress string
}

// Register creates a merchant with a fresh identifier.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Merchant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Merchant{}, errors.New("merchant name is required")
	}
	if strings.TrimSpace(in.PayoutAddress) == "" {
		return Merchant{}, errors.New("payout address is required")
	}

	m := Merchant{
		ID:            uuid.NewString(),
		Name:          name,
		PayoutAddress: in.PayoutAddress,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Merchant{}, err
	}
	return m, nil
}

// Get retrieves a merchant by identifier.
func (s *Service) Get(ctx context.Context, id string) (Merchant, error) {
	return s.repo.Get(ctx, id)
}
