package invoice

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("invoice not found")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
}

type ListFilter struct {
	Status     *Status
	CustomerID *uuid.UUID
	DraftsOnly bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	return s.repo.CreateInvoice(ctx, inv)
}

func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	return s.repo.UpdateInvoice(ctx, inv)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}
