package hsm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Event is the opaque trigger handed unmodified to guards and actions.
// The runtime imposes no shape on it.
type Event = any

// NamedEvent is implemented by events that expose a name. Transitions built
// with NewTransition(...).On(name) and the bundled hooks rely on it.
type NamedEvent interface {
	Name() string
}

// EventName returns a label for an event: its name for NamedEvent values,
// the value itself for strings, and a formatted value otherwise.
func EventName(event Event) string {
	switch e := event.(type) {
	case nil:
		return ""
	case NamedEvent:
		return e.Name()
	case string:
		return e
	case fmt.Stringer:
		return e.String()
	default:
		return fmt.Sprintf("%v", e)
	}
}

// BaseEvent provides a basic named event with payload and metadata
type BaseEvent struct {
	id        string
	name      string
	data      any
	timestamp time.Time
	metadata  map[string]any
}

// NewEvent creates a new event
func NewEvent(name string, data any) *BaseEvent {
	return &BaseEvent{
		id:        uuid.New().String(),
		name:      name,
		data:      data,
		timestamp: time.Now(),
		metadata:  make(map[string]any),
	}
}

// NewEventWithMetadata creates a new event with metadata
func NewEventWithMetadata(name string, data any, metadata map[string]any) *BaseEvent {
	e := NewEvent(name, data)
	for k, v := range metadata {
		e.metadata[k] = v
	}
	return e
}

// ID returns the unique event id
func (e *BaseEvent) ID() string {
	return e.id
}

// Name returns the event name
func (e *BaseEvent) Name() string {
	return e.name
}

// Data returns the event payload
func (e *BaseEvent) Data() any {
	return e.data
}

// Timestamp returns the creation time
func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

// Metadata returns a copy of the event metadata
func (e *BaseEvent) Metadata() map[string]any {
	result := make(map[string]any, len(e.metadata))
	for k, v := range e.metadata {
		result[k] = v
	}
	return result
}

// DecodeData decodes the payload into target, which must be a pointer.
// Map payloads are decoded field by field; other payloads must be assignable.
func (e *BaseEvent) DecodeData(target any) error {
	if e.data == nil {
		return fmt.Errorf("event %q has no data", e.name)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("event %q: %w", e.name, err)
	}
	if err := decoder.Decode(e.data); err != nil {
		return fmt.Errorf("event %q: decode data: %w", e.name, err)
	}
	return nil
}

func (e *BaseEvent) String() string {
	return e.name
}
