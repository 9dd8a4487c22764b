// Package transport carries catalog messages between the host and the UI.
//
// Key concepts:
//   - Transport: dials/listens for Sessions of one link Kind (mem, tcp, quic, winpipe)
//   - Session: one connection between a UI instance and the host
//   - Stream: ordered, lossless, length-prefixed byte frames with no
//     acknowledgement and no correlation
//   - Adapter: binds a Stream to one Side, encodes outgoing messages and
//     demultiplexes incoming frames to a single callback in arrival order
//   - Hub: the host-side set of UI peers; notifications are broadcast to all
package transport
