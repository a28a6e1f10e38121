package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rosemary-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	testProducts := []model.ProductStock{
		{Product: model.Product{ID: 1, Name: "Rice", Price: 10.00, DiscountPercent: 40, CreatedAt: time.Now()}, Stock: 5},
		{Product: model.Product{ID: 2, Name: "Milk", Price: 1.20, CreatedAt: time.Now()}, Stock: 0},
	}

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  int
		expectedOffset int
		mockReturn     []model.ProductStock
		mockError      error
		expectError    bool
	}{
		{
			name:          "Success with valid pagination",
			limit:         10,
			offset:        0,
			expectedLimit: 10,
			mockReturn:    testProducts,
		},
		{
			name:          "Success with zero limit defaults to 10",
			limit:         0,
			expectedLimit: 10,
			mockReturn:    testProducts,
		},
		{
			name:          "Success with limit exceeding max capped to 100",
			limit:         500,
			expectedLimit: 100,
			mockReturn:    testProducts,
		},
		{
			name:           "Negative offset normalised",
			limit:          5,
			offset:         -3,
			expectedLimit:  5,
			expectedOffset: 0,
			mockReturn:     []model.ProductStock{},
		},
		{
			name:          "Repository error",
			limit:         10,
			expectedLimit: 10,
			mockError:     errors.New("database error"),
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewProductService(mockRepo, logger)

			if tt.mockError != nil {
				mockRepo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOffset).Return(nil, tt.mockError)
			} else {
				mockRepo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOffset).Return(tt.mockReturn, nil)
			}

			products, err := service.GetAll(ctx, tt.limit, tt.offset)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Len(t, products, len(tt.mockReturn))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetAll_Pricing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, zerolog.Nop())

	mockRepo.On("GetAll", ctx, 10, 0).Return([]model.ProductStock{
		{Product: model.Product{ID: 1, Name: "Rice", Price: 10.00, DiscountPercent: 40}, Stock: 5},
	}, nil)

	products, err := service.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 6.00, products[0].DiscountedPrice)
	assert.Equal(t, 4.00, products[0].DiscountAmount)
	assert.Equal(t, 5, products[0].Stock)
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	rice := &model.ProductStock{Product: model.Product{ID: 1, Name: "Rice", Price: 10.00}, Stock: 3}

	tests := []struct {
		name          string
		id            int64
		mockReturn    *model.ProductStock
		mockError     error
		callsRepo     bool
		expectedError error
		expectError   bool
	}{
		{name: "Found", id: 1, mockReturn: rice, callsRepo: true},
		{name: "Not found", id: 2, callsRepo: true, expectedError: model.ErrProductNotFound, expectError: true},
		{name: "Invalid id", id: 0, expectedError: model.ErrProductNotFound, expectError: true},
		{name: "Repository error", id: 1, mockError: errors.New("database error"), callsRepo: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewProductService(mockRepo, logger)

			if tt.callsRepo {
				if tt.mockReturn != nil {
					mockRepo.On("GetByID", ctx, tt.id).Return(tt.mockReturn, nil)
				} else {
					mockRepo.On("GetByID", ctx, tt.id).Return(nil, tt.mockError)
				}
			}

			product, err := service.GetByID(ctx, tt.id)

			if tt.expectError {
				require.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Nil(t, product)
			} else {
				require.NoError(t, err)
				require.NotNil(t, product)
				assert.Equal(t, "Rice", product.Name)
				assert.Equal(t, 3, product.Stock)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	input := model.ProductInput{Name: "Oat Milk", Price: 2.00, Barcode: "739437", DiscountPercent: 25, Quantity: 6}
	created := &model.ProductStock{Product: model.Product{ID: 9, Name: "Oat Milk", Price: 2.00, Barcode: "739437", DiscountPercent: 25}, Stock: 6}

	tests := []struct {
		name          string
		actor         model.Actor
		input         model.ProductInput
		setup         func(repo *MockProductRepository)
		expectedError error
	}{
		{
			name:  "Employee creates a product",
			actor: model.Employee(3),
			input: input,
			setup: func(repo *MockProductRepository) {
				repo.On("Create", ctx, input).Return(created, nil)
			},
		},
		{
			name:          "Customer is refused",
			actor:         model.Customer(7),
			input:         input,
			setup:         func(repo *MockProductRepository) {},
			expectedError: model.ErrActorNotAllowed,
		},
		{
			name:  "Invalid input never reaches the store",
			actor: model.Employee(3),
			input: model.ProductInput{Name: "Oat Milk", Barcode: "739437", Quantity: -1},
			setup: func(repo *MockProductRepository) {},
		},
		{
			name:  "Duplicate barcode",
			actor: model.Employee(3),
			input: input,
			setup: func(repo *MockProductRepository) {
				repo.On("Create", ctx, input).Return(nil, fmt.Errorf("%w: Key (barcode)", model.ErrBarcodeExists))
			},
			expectedError: model.ErrBarcodeExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			tt.setup(mockRepo)
			service := NewProductService(mockRepo, zerolog.Nop())

			view, err := service.Create(ctx, tt.actor, tt.input)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, view)
			case tt.input.Quantity < 0:
				assert.Equal(t, model.ErrCodeInvalidProduct, model.CodeOf(err))
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(9), view.ID)
				assert.Equal(t, 1.50, view.DiscountedPrice)
				assert.Equal(t, 6, view.Stock)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	input := model.ProductInput{Name: "Rice", Price: 9.00, Barcode: "BC-Rice", Quantity: 0}

	t.Run("Stock is replaced", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("Update", ctx, int64(1), input).
			Return(&model.ProductStock{Product: model.Product{ID: 1, Name: "Rice", Price: 9.00}, Stock: 0}, nil)
		service := NewProductService(mockRepo, zerolog.Nop())

		view, err := service.Update(ctx, model.Employee(3), 1, input)

		require.NoError(t, err)
		assert.Equal(t, 0, view.Stock)
		assert.Equal(t, 9.00, view.Price)
	})

	t.Run("Unknown product", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("Update", ctx, int64(5), input).Return(nil, nil)
		service := NewProductService(mockRepo, zerolog.Nop())

		_, err := service.Update(ctx, model.Employee(3), 5, input)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Store failure is wrapped", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("Update", ctx, int64(1), input).Return(nil, errors.New("connection reset"))
		service := NewProductService(mockRepo, zerolog.Nop())

		_, err := service.Update(ctx, model.Employee(3), 1, input)
		require.Error(t, err)
		assert.Equal(t, model.ErrCodeInternalError, model.CodeOf(err))
	})

	t.Run("Customer is refused", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewProductService(mockRepo, zerolog.Nop())

		_, err := service.Update(ctx, model.Customer(7), 1, input)
		assert.ErrorIs(t, err, model.ErrActorNotAllowed)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		actor         model.Actor
		id            int64
		deleted       bool
		repoErr       error
		callsRepo     bool
		expectedError error
	}{
		{name: "Deleted", actor: model.Employee(3), id: 1, deleted: true, callsRepo: true},
		{name: "Unknown product", actor: model.Employee(3), id: 2, callsRepo: true, expectedError: model.ErrProductNotFound},
		{name: "Product on an order", actor: model.Employee(3), id: 3, repoErr: model.ErrProductInUse, callsRepo: true, expectedError: model.ErrProductInUse},
		{name: "Invalid id", actor: model.Employee(3), id: 0, expectedError: model.ErrProductNotFound},
		{name: "Customer is refused", actor: model.Customer(7), id: 1, expectedError: model.ErrActorNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			if tt.callsRepo {
				mockRepo.On("Delete", ctx, tt.id).Return(tt.deleted, tt.repoErr)
			}
			service := NewProductService(mockRepo, zerolog.Nop())

			err := service.Delete(ctx, tt.actor, tt.id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
