package protocol

import "errors"

var (
	ErrUnknownKind     = errors.New("protocol: unknown message kind")
	ErrWrongDirection  = errors.New("protocol: kind not valid in this direction")
	ErrEmptyFrame      = errors.New("protocol: empty frame")
	ErrUnknownFormat   = errors.New("protocol: unknown body format")
	ErrPayloadMismatch = errors.New("protocol: payload does not match kind")
)
