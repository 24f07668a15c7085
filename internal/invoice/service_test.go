package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
)

func TestService_Create(t *testing.T) {
	type args struct {
		inv *invoice.Invoice
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *invoice.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				inv: &invoice.Invoice{
					CustomerID: uuid.New(),
					Items: []invoice.Item{
						{Description: "Oil change", Quantity: 1, Price: 3500},
					},
					Subtotal: 3500,
					Total:    3500,
					Status:   invoice.StatusPending,
					Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						inv.ID = uuid.New()
						inv.CreatedAt = time.Now()
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "RepoError",
			args: args{
				inv: &invoice.Invoice{CustomerID: uuid.New()},
			},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := invoice.NewService(repo)
			err := svc.Create(context.Background(), tt.args.inv)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, tt.args.inv.ID)
		})
	}
}

func TestService_List(t *testing.T) {
	type args struct {
		filter invoice.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *invoice.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: invoice.ListFilter{DraftsOnly: true}},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().
					ListInvoices(gomock.Any(), invoice.ListFilter{DraftsOnly: true}).
					Return([]*invoice.Invoice{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, nil)
			},
			wantLen: 2,
			wantErr: false,
		},
		{
			name: "Error",
			args: args{filter: invoice.ListFilter{}},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().
					ListInvoices(gomock.Any(), invoice.ListFilter{}).
					Return(nil, errors.New("list error"))
			},
			wantLen: 0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := invoice.NewService(repo)
			got, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().
		GetInvoice(gomock.Any(), id).
		Return(nil, invoice.ErrNotFound)

	svc := invoice.NewService(repo)
	got, err := svc.Get(context.Background(), id)

	require.ErrorIs(t, err, invoice.ErrNotFound)
	assert.Nil(t, got)
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inv := &invoice.Invoice{ID: uuid.New(), Status: invoice.StatusPaid}

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().
		UpdateInvoice(gomock.Any(), inv).
		Return(nil)

	svc := invoice.NewService(repo)
	require.NoError(t, svc.Update(context.Background(), inv))
}
