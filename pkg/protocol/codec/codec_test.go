package codec

import (
	"bytes"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestJSONCodec(t *testing.T) {
	c := JSON()
	in := map[string]any{"a": 1, "b": "x"}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["a"].(float64) != 1 || out["b"].(string) != "x" {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestCBORNestedMapsKeepStringKeys(t *testing.T) {
	c, err := CBOR()
	if err != nil {
		t.Fatalf("new cbor: %v", err)
	}
	in := map[string]any{"hosting": map[string]any{"public": "public"}}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	hosting, ok := out["hosting"].(map[string]any)
	if !ok {
		t.Fatalf("nested map type = %T", out["hosting"])
	}
	if hosting["public"] != "public" {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

func TestProtoCodec(t *testing.T) {
	c := Proto()
	s, err := structpb.NewStruct(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	b, err := c.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out structpb.Struct
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Fields["k"].GetStringValue() != "v" {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestProtoCodecCarriesPlainValuesAsStruct(t *testing.T) {
	type env struct {
		Kind    string         `json:"kind"`
		Payload map[string]any `json:"payload"`
	}
	c := Proto()
	b, err := c.Marshal(env{Kind: "notifyEnv", Payload: map[string]any{"isMonospace": true}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var s structpb.Struct
	if err := c.Unmarshal(b, &s); err != nil {
		t.Fatalf("body is not a Struct: %v", err)
	}
	var out env
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Kind != "notifyEnv" || out.Payload["isMonospace"] != true {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
	if _, err := c.Marshal([]string{"not", "an", "object"}); err == nil {
		t.Fatal("expected error for non-object value")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	in := bytes.Repeat([]byte(`{"kind":"notifyUsers"}`), 64)
	z, err := Compress(in)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(z) >= len(in) {
		t.Fatalf("expected compressed output smaller than %d, got %d", len(in), len(z))
	}
	out, err := Decompress(z)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatal("roundtrip mismatch")
	}
}
