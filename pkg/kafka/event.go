package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is stamped on every event the storefront publishes.
const EnvelopeVersion = 1

// Metadata keys the storefront sets on its envelopes.
const (
	MetadataSessionID = "session_id"
	MetadataCurrency  = "currency"
)

// ErrMalformedEvent is returned for envelopes missing their id or type.
var ErrMalformedEvent = errors.New("malformed event envelope")

// Event is the envelope every storefront message is published in. Data
// holds the topic-specific payload; Metadata carries the visitor session
// and shop currency when they are known.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id and the current UTC time.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
		Metadata:      make(map[string]string),
	}, nil
}

func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithSessionID tags the event with the visitor session that caused it.
// An empty id leaves the event untouched.
func (e *Event) WithSessionID(id string) *Event {
	if id == "" {
		return e
	}
	return e.WithMetadata(MetadataSessionID, id)
}

// SessionID returns the visitor session tag, or "" if none was set.
func (e *Event) SessionID() string {
	return e.Metadata[MetadataSessionID]
}

func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// PartitionKey keeps all events of one aggregate on the same partition.
func (e *Event) PartitionKey() []byte {
	return []byte(e.AggregateID)
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes an envelope and rejects ones without an id or type.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if event.EventID == "" || event.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_id or event_type", ErrMalformedEvent)
	}
	return &event, nil
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrMalformedEvent, e.EventType)
	}
	return json.Unmarshal(e.Data, target)
}
