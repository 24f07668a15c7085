package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("catalog item not found")

type Repository interface {
	CreateItem(ctx context.Context, item *Item) error
	UpsertItemByName(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, activeOnly bool) ([]*Item, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name  string
	Price int64
	Type  Type
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Item, error) {
	item := &Item{
		Name:   strings.TrimSpace(params.Name),
		Price:  params.Price,
		Type:   params.Type,
		Active: true,
	}

	if item.Name == "" {
		return nil, errors.New("catalog item name is required")
	}

	if item.Type != TypeService && item.Type != TypeProduct {
		return nil, errors.New("catalog item type must be service or product")
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Upsert creates or refreshes an item keyed by name; used by the price-list
// importer.
func (s *Service) Upsert(ctx context.Context, params CreateParams) (*Item, error) {
	item := &Item{
		Name:   strings.TrimSpace(params.Name),
		Price:  params.Price,
		Type:   params.Type,
		Active: true,
	}

	if item.Name == "" {
		return nil, errors.New("catalog item name is required")
	}

	if err := s.repo.UpsertItemByName(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Item, error) {
	return s.repo.ListItems(ctx, activeOnly)
}
