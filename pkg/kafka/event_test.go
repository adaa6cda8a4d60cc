package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Fields(t *testing.T) {
	type reviewData struct {
		ProductID int    `json:"product_id"`
		Author    string `json:"author"`
	}

	data := reviewData{ProductID: 6, Author: "Luna"}
	event, err := NewEvent("review.created", "6", "product", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "review.created", event.EventType)
	assert.Equal(t, "6", event.AggregateID)
	assert.Equal(t, "product", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, EnvelopeVersion, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Metadata)

	var decoded reviewData
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, data, decoded)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("test.event", "agg-1", "test", "svc", make(chan int))
	require.Error(t, err)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	original, err := NewEvent("cart.updated", "sess-1", "session", "storefront", map[string]int{"items": 2})
	require.NoError(t, err)
	original.WithCorrelationID("corr-abc").WithMetadata("client", "web")

	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, "corr-abc", restored.CorrelationID)
	assert.Equal(t, "web", restored.Metadata["client"])
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

func TestEvent_WithMetadata_NilMap(t *testing.T) {
	event := &Event{EventID: "id"}
	event.WithMetadata("key", "value")
	assert.Equal(t, "value", event.Metadata["key"])
}

func TestEvent_UnmarshalData_Invalid(t *testing.T) {
	event := &Event{Data: json.RawMessage(`not json`)}
	var target map[string]string
	require.Error(t, event.UnmarshalData(&target))
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{broken`))
	require.Error(t, err)
}

func TestUnmarshalEvent_MissingIdentity(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{"aggregate_id":"sess-1","data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestEvent_SessionID(t *testing.T) {
	event, err := NewEvent("cart.updated", "sess-1", "session", "storefront", nil)
	require.NoError(t, err)

	event.WithSessionID("")
	assert.Empty(t, event.SessionID())
	assert.NotContains(t, event.Metadata, MetadataSessionID)

	event.WithSessionID("sess-1")
	raw, err := event.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", restored.SessionID())
	assert.Equal(t, []byte("sess-1"), restored.PartitionKey())
}

func TestEvent_SessionID_NilMetadata(t *testing.T) {
	assert.Empty(t, (&Event{}).SessionID())
}

func TestEvent_UnmarshalData_Empty(t *testing.T) {
	event := &Event{EventType: "cart.updated"}
	var target map[string]string
	assert.ErrorIs(t, event.UnmarshalData(&target), ErrMalformedEvent)
}

func TestTopic(t *testing.T) {
	tests := []struct {
		domain, action, want string
	}{
		{"cart", "updated", "storefront.cart.updated"},
		{"review", "created", "storefront.review.created"},
		{"order", "submitted", "storefront.order.submitted"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}
