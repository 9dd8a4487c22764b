package protocol

import "fmt"

// Message is the atomic unit on the channel. It is immutable once built.
type Message struct {
	kind    Kind
	payload any
}

// NewRequest wraps a UI→Host payload.
func NewRequest(r Request) Message { return Message{kind: r.RequestKind(), payload: r} }

// NewNotification wraps a Host→UI payload.
func NewNotification(n Notification) Message {
	return Message{kind: n.NotificationKind(), payload: n}
}

func (m Message) Kind() Kind   { return m.kind }
func (m Message) Payload() any { return m.payload }

// Direction returns the catalog direction of the message kind.
func (m Message) Direction() Direction {
	d, _ := DirectionOf(m.kind)
	return d
}

// Request returns the payload as a Request, if it is one.
func (m Message) Request() (Request, bool) {
	r, ok := m.payload.(Request)
	return r, ok
}

// Notification returns the payload as a Notification, if it is one.
func (m Message) Notification() (Notification, bool) {
	n, ok := m.payload.(Notification)
	return n, ok
}

func (m Message) String() string { return fmt.Sprintf("%s(%s)", m.kind, m.Direction()) }

// PayloadAs returns the payload as T.
func PayloadAs[T any](m Message) (T, error) {
	v, ok := m.payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s carries %T, want %T", ErrPayloadMismatch, m.kind, m.payload, zero)
	}
	return v, nil
}
