package settings

import (
	"context"
)

type Repository interface {
	GetSettings(ctx context.Context) (*Settings, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored settings, falling back to the default payment method
// table when none are configured yet.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	cfg, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if len(cfg.Methods) == 0 {
		cfg.Methods = DefaultMethods()
	}

	return cfg, nil
}

// DefaultMethods is the out-of-the-box tax table: card payments attract the
// statutory rate, cash and transfers are untaxed.
func DefaultMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "cash", Label: LabelCash, TaxRateBps: 0},
		{ID: "card", Label: LabelCardPOS, TaxRateBps: 750},
		{ID: "transfer", Label: LabelTransfer, TaxRateBps: 0},
	}
}
