package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckoutHandler_Checkout(t *testing.T) {
	logger := zerolog.Nop()

	placed := &model.CheckoutResult{
		OrderID:       11,
		Status:        model.OrderStatusPending,
		Subtotal:      30,
		TotalDiscount: 12,
		TotalPrice:    18,
		TotalQuantity: 3,
		Items:         []model.OrderLineItem{{OrderID: 11, ProductID: 1, Quantity: 3}},
	}

	tests := []struct {
		name           string
		body           string
		actor          *model.Actor
		expectEntry    model.CheckoutEntry
		mockResult     *model.CheckoutResult
		mockError      error
		expectedStatus int
		expectService  bool
		expectCartLeft int
	}{
		{
			name:           "Online checkout with empty body",
			body:           "",
			actor:          &model.Actor{Kind: model.ActorCustomer, ID: 2},
			expectEntry:    model.EntryOnline,
			mockResult:     placed,
			expectedStatus: http.StatusCreated,
			expectService:  true,
			expectCartLeft: 0,
		},
		{
			name:           "Self checkout",
			body:           `{"entry": "self_checkout"}`,
			actor:          &model.Actor{Kind: model.ActorCustomer, ID: 2},
			expectEntry:    model.EntrySelfCheckout,
			mockResult:     placed,
			expectedStatus: http.StatusCreated,
			expectService:  true,
			expectCartLeft: 0,
		},
		{
			name:           "Insufficient stock keeps cart",
			body:           `{}`,
			actor:          &model.Actor{Kind: model.ActorCustomer, ID: 2},
			expectEntry:    model.EntryOnline,
			mockError:      &model.InsufficientStockError{ProductID: 1, ProductName: "Milk", Available: 2, Requested: 3},
			expectedStatus: http.StatusConflict,
			expectService:  true,
			expectCartLeft: 3,
		},
		{
			name:           "Transaction failure keeps cart",
			body:           `{}`,
			actor:          &model.Actor{Kind: model.ActorCustomer, ID: 2},
			expectEntry:    model.EntryOnline,
			mockError:      model.NewTransactionError("commit", errors.New("conn reset")),
			expectedStatus: http.StatusServiceUnavailable,
			expectService:  true,
			expectCartLeft: 3,
		},
		{
			name:           "Employee cannot check out",
			body:           `{}`,
			actor:          &model.Actor{Kind: model.ActorEmployee, ID: 1},
			expectEntry:    model.EntryOnline,
			mockError:      model.ErrActorNotAllowed,
			expectedStatus: http.StatusForbidden,
			expectService:  true,
			expectCartLeft: 3,
		},
		{
			name:           "Anonymous request",
			body:           `{}`,
			expectedStatus: http.StatusUnauthorized,
			expectCartLeft: 3,
		},
		{
			name:           "Unknown entry",
			body:           `{"entry": "kiosk"}`,
			actor:          &model.Actor{Kind: model.ActorCustomer, ID: 2},
			expectedStatus: http.StatusBadRequest,
			expectCartLeft: 3,
		},
		{
			name:           "Invalid JSON",
			body:           `{`,
			actor:          &model.Actor{Kind: model.ActorCustomer, ID: 2},
			expectedStatus: http.StatusBadRequest,
			expectCartLeft: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cart.NewStore(cart.DefaultMaxIdle, logger)
			seeded := cart.New()
			seeded.Set(1, 3)
			store.Save(testSession, seeded)

			mockService := new(MockCheckoutService)
			handler := NewCheckoutHandler(store, mockService, logger)

			if tt.expectService {
				call := mockService.On("Checkout", mock.Anything, *tt.actor, mock.AnythingOfType("*cart.Cart"), tt.expectEntry).
					Return(tt.mockResult, tt.mockError)
				if tt.mockError == nil {
					call.Run(func(args mock.Arguments) {
						args.Get(2).(*cart.Cart).Clear()
					})
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(tt.body))
			req = withSession(req, testSession)
			if tt.actor != nil {
				req = withActor(req, *tt.actor)
			}
			w := httptest.NewRecorder()

			handler.Checkout(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCartLeft, store.Load(testSession).Quantity(1))

			if tt.expectedStatus == http.StatusCreated {
				var got model.CheckoutResult
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, int64(11), got.OrderID)
				assert.Equal(t, 18.0, got.TotalPrice)
			}

			mockService.AssertExpectations(t)
		})
	}
}
