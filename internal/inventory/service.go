package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("inventory item not found")

type Repository interface {
	CreateItem(ctx context.Context, item *Item) error
	UpsertItemByName(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context) ([]*Item, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name         string
	SalePrice    int64
	CurrentStock int64
	MinStock     int64
	Unit         string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Item, error) {
	item, err := fromParams(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Upsert creates or refreshes an item keyed by name; used by the price-list
// importer.
func (s *Service) Upsert(ctx context.Context, params CreateParams) (*Item, error) {
	item, err := fromParams(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertItemByName(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	return s.repo.ListItems(ctx)
}

func fromParams(params CreateParams) (*Item, error) {
	item := &Item{
		Name:         strings.TrimSpace(params.Name),
		SalePrice:    params.SalePrice,
		CurrentStock: params.CurrentStock,
		MinStock:     params.MinStock,
		Unit:         strings.TrimSpace(params.Unit),
	}

	if item.Name == "" {
		return nil, errors.New("inventory item name is required")
	}

	if item.CurrentStock < 0 || item.MinStock < 0 {
		return nil, errors.New("stock counts cannot be negative")
	}

	return item, nil
}
