// Package notify publishes record change events to named channels and fans
// them out to subscribers. Delivery is best effort: there is no retry, no
// acknowledgement and no ordering guarantee across server instances.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"adminpanel/models"
)

// Channel and event names carried on the wire.
const (
	StudentsChannel = "students-channel"

	EventCreated = "student-created"
	EventUpdated = "student-updated"
	EventDeleted = "student-deleted"
)

// Notifier publishes one event. Implementations must not block on slow
// subscribers.
type Notifier interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// Envelope is the JSON frame delivered to subscribers.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// RecordPayload is the data of created and updated events.
type RecordPayload struct {
	Student models.Record `json:"student"`
}

// DeletePayload is the data of deleted events.
type DeletePayload struct {
	ID string `json:"id"`
}

// NewEnvelope marshals payload into an Envelope.
func NewEnvelope(channel, event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Envelope{Channel: channel, Event: event, Data: data}, nil
}

// DecodeEnvelope parses a wire frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Channel == "" || env.Event == "" {
		return Envelope{}, fmt.Errorf("decode envelope: channel and event are required")
	}
	return env, nil
}
