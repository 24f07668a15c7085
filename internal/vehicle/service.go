package vehicle

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("vehicle not found")

type Repository interface {
	CreateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	ListVehicles(ctx context.Context, filter ListFilter) ([]*Vehicle, error)
}

type ListFilter struct {
	CustomerID *uuid.UUID
	Search     string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	CustomerID uuid.UUID
	Make       string
	Model      string
	Year       int
	PlateNo    string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Vehicle, error) {
	v := &Vehicle{
		CustomerID: params.CustomerID,
		Make:       strings.TrimSpace(params.Make),
		Model:      strings.TrimSpace(params.Model),
		Year:       params.Year,
		PlateNo:    strings.TrimSpace(params.PlateNo),
	}
	if v.Make == "" || v.Model == "" {
		return nil, errors.New("vehicle make and model are required")
	}

	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}

	return v, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

// List returns vehicles scoped to a customer when the filter carries one.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Vehicle, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListVehicles(ctx, filter)
}
