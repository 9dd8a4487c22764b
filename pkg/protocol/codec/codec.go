package codec

import "sync"

// Codec marshals catalog payloads and wire envelopes.
// Implementations must be lossless for strings, booleans, nested records and lists.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Registry maps content types to codecs. It is safe for concurrent use;
// adapters share one registry across sessions.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Codec
}

// NewRegistry returns a registry loaded with every wire codec: JSON, CBOR
// and Protobuf.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]Codec, 3)}
	r.Register(JSON())
	r.Register(Proto())
	if c, err := CBOR(); err == nil {
		r.Register(c)
	}
	return r
}

// Register adds or replaces the codec for its content type.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	r.byType[c.ContentType()] = c
	r.mu.Unlock()
}

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[contentType]
}
