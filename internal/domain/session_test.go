package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession("abc", time.Now())

	assert.Equal(t, ViewHome, s.View)
	assert.Equal(t, AllCategories, s.SelectedCategory)
	assert.Equal(t, CheckoutDetails, s.CheckoutStep)
	assert.True(t, s.Cart.IsEmpty())
	assert.False(t, s.CartOpen)
	assert.Nil(t, s.SelectedProductID)
}

func TestSession_AddToCartOpensDrawerAndClosesProduct(t *testing.T) {
	s := NewSession("abc", time.Now()).OpenProduct(3)
	require.NotNil(t, s.SelectedProductID)

	next := s.AddToCart(testProduct(3, 18, "Stationery"))

	assert.True(t, next.CartOpen)
	assert.Nil(t, next.SelectedProductID)
	assert.Equal(t, 1, next.Cart.ItemCount())

	// the previous state is unchanged
	assert.NotNil(t, s.SelectedProductID)
	assert.True(t, s.Cart.IsEmpty())
}

func TestSession_SelectCategorySwitchesToShop(t *testing.T) {
	s := NewSession("abc", time.Now()).SelectCategory("Home")
	assert.Equal(t, ViewShop, s.View)
	assert.Equal(t, "Home", s.SelectedCategory)
}

func TestSession_OpenCloseProductDoesNotAlias(t *testing.T) {
	a := NewSession("abc", time.Now()).OpenProduct(1)
	b := a.OpenProduct(2)

	assert.Equal(t, 1, *a.SelectedProductID)
	assert.Equal(t, 2, *b.SelectedProductID)
	assert.Nil(t, b.CloseProduct().SelectedProductID)
}

func TestSession_CartDrawer(t *testing.T) {
	s := NewSession("abc", time.Now()).OpenCart()
	assert.True(t, s.CartOpen)
	assert.False(t, s.CloseCart().CartOpen)
}

func TestSession_CheckoutLifecycle(t *testing.T) {
	s := NewSession("abc", time.Now()).AddToCart(testProduct(1, 24, "Home"))

	done := s.CompleteCheckout("ORDER-ABC")
	assert.Equal(t, CheckoutSuccess, done.CheckoutStep)
	assert.Equal(t, "ORDER-ABC", done.LastOrderID)
	assert.True(t, done.Cart.IsEmpty())
	assert.False(t, done.CartOpen)

	reset := done.ResetCheckout()
	assert.Equal(t, CheckoutDetails, reset.CheckoutStep)
	assert.Empty(t, reset.LastOrderID)
}

func TestViewState_IsValid(t *testing.T) {
	assert.True(t, ViewHome.IsValid())
	assert.True(t, ViewShop.IsValid())
	assert.True(t, ViewAbout.IsValid())
	assert.False(t, ViewState("CHECKOUT").IsValid())
}
