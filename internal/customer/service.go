package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("customer not found")

type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, search string) ([]*Customer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name  string
	Phone string
	Email string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	c := &Customer{
		Name:  strings.TrimSpace(params.Name),
		Phone: strings.TrimSpace(params.Phone),
		Email: strings.TrimSpace(params.Email),
	}
	if c.Name == "" {
		return nil, errors.New("customer name is required")
	}

	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// List returns customers matching the search term, or all when it is empty.
func (s *Service) List(ctx context.Context, search string) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, strings.TrimSpace(search))
}
