package protocol

import (
	"fmt"
	"strings"

	"fbbridge/pkg/protocol/codec"
)

// Format is the on-wire encoding indicator carried in the first byte of
// every frame. The high bit marks a zstd-compressed body.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatCBOR
	FormatProto
)

// FlagCompressed is or'ed into the format byte when the body is compressed.
const FlagCompressed byte = 0x80

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return ContentJSON
	case FormatCBOR:
		return ContentCBOR
	case FormatProto:
		return ContentProto
	default:
		return ContentUnknown
	}
}

// ParseFormat maps a config name (json, cbor, proto) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	case "proto", "protobuf":
		return FormatProto, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// CodecFor returns a codec instance for a given format.
func CodecFor(r *codec.Registry, f Format) (codec.Codec, error) {
	switch f {
	case FormatJSON:
		if c := r.Get(ContentJSON); c != nil {
			return c, nil
		}
		return codec.JSON(), nil
	case FormatCBOR:
		if c := r.Get(ContentCBOR); c != nil {
			return c, nil
		}
		return codec.CBOR()
	case FormatProto:
		if c := r.Get(ContentProto); c != nil {
			return c, nil
		}
		return codec.Proto(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
}

type wireMessage struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload"`
}

type wireKind struct {
	Kind Kind `json:"kind"`
}

// EncodeMessage serializes m as one frame: a format byte followed by the
// codec body.
func EncodeMessage(r *codec.Registry, f Format, m Message, compress bool) ([]byte, error) {
	if !Known(m.kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, m.kind)
	}
	c, err := CodecFor(r, f)
	if err != nil {
		return nil, err
	}
	body, err := c.Marshal(wireMessage{Kind: m.kind, Payload: m.payload})
	if err != nil {
		return nil, err
	}
	hdr := byte(f)
	if compress {
		if body, err = codec.Compress(body); err != nil {
			return nil, err
		}
		hdr |= FlagCompressed
	}
	out := make([]byte, 1+len(body))
	out[0] = hdr
	copy(out[1:], body)
	return out, nil
}

// DecodeMessage parses a frame produced by EncodeMessage. The payload is
// decoded into the catalog type for its kind.
func DecodeMessage(r *codec.Registry, frame []byte) (Message, Format, error) {
	if len(frame) == 0 {
		return Message{}, FormatUnknown, ErrEmptyFrame
	}
	f := Format(frame[0] &^ FlagCompressed)
	body := frame[1:]
	var err error
	if frame[0]&FlagCompressed != 0 {
		if body, err = codec.Decompress(body); err != nil {
			return Message{}, f, fmt.Errorf("decompress: %w", err)
		}
	}

	c, err := CodecFor(r, f)
	if err != nil {
		return Message{}, f, err
	}

	var wk wireKind
	if err := c.Unmarshal(body, &wk); err != nil {
		return Message{}, f, fmt.Errorf("decode kind: %w", err)
	}
	e, ok := catalog[wk.Kind]
	if !ok {
		return Message{}, f, fmt.Errorf("%w: %q", ErrUnknownKind, wk.Kind)
	}
	p, err := e.decode(c, body)
	if err != nil {
		return Message{}, f, fmt.Errorf("decode %s payload: %w", wk.Kind, err)
	}
	return Message{kind: wk.Kind, payload: p}, f, nil
}
