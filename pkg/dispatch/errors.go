package dispatch

import "errors"

var (
	ErrNoHandler            = errors.New("dispatch: no handler registered for request kind")
	ErrNotRequest           = errors.New("dispatch: kind is not a request")
	ErrNotNotification      = errors.New("dispatch: kind is not a notification")
	ErrUndocumentedResponse = errors.New("dispatch: handler produced a notification not documented for its request")
	ErrHandlerPanic         = errors.New("dispatch: handler panicked")
)
