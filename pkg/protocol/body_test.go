package protocol

import (
	"errors"
	"reflect"
	"testing"

	"fbbridge/pkg/protocol/codec"
)

func newTestRegistry(t *testing.T) *codec.Registry {
	t.Helper()
	reg := codec.NewRegistry()
	if reg.Get(ContentCBOR) == nil {
		t.Fatal("cbor codec not loaded")
	}
	return reg
}

func sampleMessages() []Message {
	return []Message{
		NewRequest(GetEnv{}),
		NewRequest(Logout{Email: "dev@example.com"}),
		NewRequest(RequestChangeUser{User: User{Email: "sa@proj.iam", Type: UserTypeServiceAccount}}),
		NewRequest(SelectAndInitHostingFolder{ProjectID: "demo", Email: "dev@example.com", SingleAppSupport: true}),
		NewRequest(LaunchEmulators{
			FirebaseJSON: DefaultFirebaseConfig(),
			EmulatorUISelections: EmulatorUISelections{
				ProjectID:         "demo",
				ExportStateOnExit: true,
				Mode:              EmulatorModeHosting,
			},
		}),
		NewRequest(ShowMessage{Msg: "hi", Options: &MessageOptions{Modal: true}}),
		NewNotification(NotifyUsers{Users: []User{{Email: "a@example.com"}, {Email: "b@example.com"}}}),
		NewNotification(NotifyHostingDeploy{Success: true, HostingURL: "https://demo.web.app"}),
		NewNotification(NotifyWorkspaceFolders{Folders: []string{"/w/a", "/w/b"}}),
		NewNotification(NotifyFirebaseJSON{FirebaseJSON: DefaultFirebaseConfig(), FirebaseRC: FirebaseRC{Projects: map[string]string{"default": "demo"}}}),
		NewNotification(NotifyEmulatorsStopped{}),
	}
}

func TestEncodeDecodeAllFormats(t *testing.T) {
	reg := newTestRegistry(t)
	for _, f := range []Format{FormatJSON, FormatCBOR, FormatProto} {
		for _, compress := range []bool{false, true} {
			for _, m := range sampleMessages() {
				frame, err := EncodeMessage(reg, f, m, compress)
				if err != nil {
					t.Fatalf("%s %s: encode: %v", f, m, err)
				}
				got, gf, err := DecodeMessage(reg, frame)
				if err != nil {
					t.Fatalf("%s %s: decode: %v", f, m, err)
				}
				if gf != f {
					t.Fatalf("format: got %s want %s", gf, f)
				}
				if got.Kind() != m.Kind() {
					t.Fatalf("kind: got %s want %s", got.Kind(), m.Kind())
				}
				if !reflect.DeepEqual(got.Payload(), m.Payload()) {
					t.Fatalf("%s %s: payload\n got %#v\nwant %#v", f, m.Kind(), got.Payload(), m.Payload())
				}
			}
		}
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	frame := append([]byte{byte(FormatJSON)}, []byte(`{"kind":"deleteEverything","payload":{}}`)...)
	if _, _, err := DecodeMessage(codec.NewRegistry(), frame); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	reg := codec.NewRegistry()
	if _, _, err := DecodeMessage(reg, nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("want ErrEmptyFrame, got %v", err)
	}
	if _, _, err := DecodeMessage(reg, []byte{0x7f, '{'}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
	if _, _, err := DecodeMessage(reg, []byte{byte(FormatJSON), '{'}); err == nil {
		t.Fatal("want decode error for truncated json")
	}
}

func TestEncodeRejectsZeroMessage(t *testing.T) {
	if _, err := EncodeMessage(codec.NewRegistry(), FormatJSON, Message{}, false); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
}
