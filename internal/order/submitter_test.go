package order

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/pkg/logger"
)

type mockOrderPublisher struct {
	mock.Mock
}

func (m *mockOrderPublisher) PublishOrderSubmitted(ctx context.Context, orderID string, req domain.OrderRequest) error {
	return m.Called(ctx, orderID, req).Error(0)
}

func sampleRequest() domain.OrderRequest {
	return domain.OrderRequest{
		SessionID: "sess-1",
		Lines:     []domain.CartLine{{ProductID: 1, Name: "Cloud Pillow", Price: decimal.NewFromInt(24), Quantity: 2}},
		Shipping:  domain.ShippingDetails{City: "Portland", Country: "US"},
	}
}

func TestKafkaSubmitter_Submit(t *testing.T) {
	pub := &mockOrderPublisher{}
	pub.On("PublishOrderSubmitted", mock.Anything, mock.MatchedBy(func(id string) bool {
		return strings.HasPrefix(id, domain.OrderIDPrefix)
	}), sampleRequest()).Return(nil)

	s := NewKafkaSubmitter(pub, logger.NewWithWriter("test", "info", &bytes.Buffer{}))
	res, err := s.Submit(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.OrderID, domain.OrderIDPrefix))
	pub.AssertExpectations(t)
}

func TestKafkaSubmitter_PublishFails(t *testing.T) {
	pub := &mockOrderPublisher{}
	pub.On("PublishOrderSubmitted", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	s := NewKafkaSubmitter(pub, logger.NewWithWriter("test", "info", &bytes.Buffer{}))
	res, err := s.Submit(context.Background(), sampleRequest())

	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.OrderID)
}

func TestLogSubmitter_Submit(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSubmitter(logger.NewWithWriter("test", "info", &buf))
	s.newID = func() string { return "ORDER-fixed0001" }

	res, err := s.Submit(context.Background(), sampleRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.OrderResult{Success: true, OrderID: "ORDER-fixed0001"}, res)
	assert.Contains(t, buf.String(), `"total":"48.00"`)
	assert.Contains(t, buf.String(), "Portland")
}
