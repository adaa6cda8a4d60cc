package service

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mochico/storefront/internal/domain"
	apperrors "github.com/mochico/storefront/pkg/errors"
	"github.com/mochico/storefront/pkg/validator"
)

func validDetails() domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Address:   "123 Mochi Lane",
		City:      "Portland",
		State:     "OR",
		Zip:       "97201",
	}
}

func fakeDetails(f *gofakeit.Faker) domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName: f.FirstName(),
		LastName:  f.LastName(),
		Email:     f.Email(),
		Address:   f.Street(),
		City:      f.City(),
		State:     f.StateAbr(),
		Zip:       f.Zip(),
	}
}

func newTestCheckout(t *testing.T) (*CheckoutService, *SessionService, *mockSubmitter) {
	t.Helper()
	sessions, _ := newTestSessionService()
	sub := &mockSubmitter{}
	return NewCheckoutService(sessions, sub, newTestLogger()), sessions, sub
}

func TestCheckout_Submit_Success(t *testing.T) {
	svc, sessions, sub := newTestCheckout(t)
	ctx := context.Background()

	_, err := sessions.AddToCart(ctx, "s1", 1)
	require.NoError(t, err)

	sub.On("Submit", mock.Anything, mock.MatchedBy(func(req domain.OrderRequest) bool {
		return req.SessionID == "s1" &&
			len(req.Lines) == 1 &&
			req.Shipping.FirstName == "Ada" &&
			req.Shipping.Country == domain.DefaultCountry
	})).Return(domain.OrderResult{Success: true, OrderID: "ORDER-abc123def"}, nil)

	s, err := svc.Submit(ctx, "s1", validDetails())
	require.NoError(t, err)

	assert.Equal(t, domain.CheckoutSuccess, s.CheckoutStep)
	assert.Equal(t, "ORDER-abc123def", s.LastOrderID)
	assert.Empty(t, s.Cart.Lines)
	assert.False(t, s.CartOpen)
	sub.AssertExpectations(t)
}

func TestCheckout_Submit_GeneratedCustomers(t *testing.T) {
	f := gofakeit.New(42)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		svc, sessions, sub := newTestCheckout(t)
		details := fakeDetails(f)

		_, err := sessions.AddToCart(ctx, "s1", 1+i%8)
		require.NoError(t, err)
		sub.On("Submit", mock.Anything, mock.MatchedBy(func(req domain.OrderRequest) bool {
			return req.Shipping.Email == details.Email && req.Shipping.Zip == details.Zip
		})).Return(domain.OrderResult{Success: true, OrderID: domain.NewOrderID()}, nil)

		s, err := svc.Submit(ctx, "s1", details)
		require.NoError(t, err, "customer %+v", details)
		assert.Equal(t, domain.CheckoutSuccess, s.CheckoutStep)
		sub.AssertExpectations(t)
	}
}

func TestCheckout_Submit_FailureKeepsCart(t *testing.T) {
	svc, sessions, sub := newTestCheckout(t)
	ctx := context.Background()

	_, err := sessions.AddToCart(ctx, "s1", 1)
	require.NoError(t, err)
	sub.On("Submit", mock.Anything, mock.Anything).Return(domain.OrderResult{}, errors.New("warehouse offline"))

	_, err = svc.Submit(ctx, "s1", validDetails())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CHECKOUT_FAILED", appErr.Code)
	assert.NotContains(t, appErr.Message, "warehouse")

	s, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutDetails, s.CheckoutStep)
	assert.Len(t, s.Cart.Lines, 1)
}

func TestCheckout_Submit_UnsuccessfulResult(t *testing.T) {
	svc, sessions, sub := newTestCheckout(t)
	ctx := context.Background()

	_, err := sessions.AddToCart(ctx, "s1", 1)
	require.NoError(t, err)
	sub.On("Submit", mock.Anything, mock.Anything).Return(domain.OrderResult{Success: false}, nil)

	_, err = svc.Submit(ctx, "s1", validDetails())
	assert.ErrorIs(t, err, apperrors.ErrCheckoutFailed)
}

func TestCheckout_Submit_EmptyCart(t *testing.T) {
	svc, _, sub := newTestCheckout(t)

	_, err := svc.Submit(context.Background(), "s1", validDetails())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestCheckout_Submit_InvalidDetails(t *testing.T) {
	svc, _, sub := newTestCheckout(t)

	details := validDetails()
	details.Email = "not-an-email"
	details.Zip = "  "

	_, err := svc.Submit(context.Background(), "s1", details)
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "email")
	assert.Contains(t, verr.Fields(), "zip")
	sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestCheckout_Reset(t *testing.T) {
	svc, sessions, sub := newTestCheckout(t)
	ctx := context.Background()

	_, err := sessions.AddToCart(ctx, "s1", 1)
	require.NoError(t, err)
	sub.On("Submit", mock.Anything, mock.Anything).Return(domain.OrderResult{Success: true, OrderID: "ORDER-1"}, nil)
	_, err = svc.Submit(ctx, "s1", validDetails())
	require.NoError(t, err)

	s, err := svc.Reset(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutDetails, s.CheckoutStep)
	assert.Empty(t, s.LastOrderID)
}
