package mem

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"fbbridge/pkg/transport"
)

func TestListenDialAccept(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tr := New()
	l, err := tr.Listen(ctx, "host")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if _, err := tr.Listen(ctx, "host"); err == nil {
		t.Fatal("duplicate listener accepted")
	}

	cli, err := tr.Dial(ctx, "host", transport.PeerInfo{ID: "ui-1"})
	if err != nil {
		t.Fatal(err)
	}
	srv, err := l.Accept(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if srv.Peer().ID != "ui-1" || srv.TransportKind() != transport.KindMem {
		t.Fatalf("accepted peer %+v kind %v", srv.Peer(), srv.TransportKind())
	}

	cs, _ := cli.OpenStream(ctx)
	ss, _ := srv.OpenStream(ctx)
	for _, f := range []string{"one", "two"} {
		if err := cs.SendBytes([]byte(f)); err != nil {
			t.Fatal(err)
		}
	}
	_ = cli.Close()
	for _, want := range []string{"one", "two"} {
		b, err := ss.RecvBytes()
		if err != nil || string(b) != want {
			t.Fatalf("recv %q, %v; want %q", b, err, want)
		}
	}
	if _, err := ss.RecvBytes(); !errors.Is(err, io.EOF) {
		t.Fatalf("after close: %v", err)
	}
}

func TestDialWithoutListener(t *testing.T) {
	_, err := New().Dial(context.Background(), "nobody", transport.PeerInfo{ID: "ui-1"})
	if !errors.Is(err, transport.ErrNoListener) {
		t.Fatalf("dial: %v", err)
	}
}

func TestAcceptAfterClose(t *testing.T) {
	tr := New()
	l, err := tr.Listen(context.Background(), "host")
	if err != nil {
		t.Fatal(err)
	}
	_ = l.Close()
	if _, err := l.Accept(context.Background()); !errors.Is(err, transport.ErrListenerClosed) {
		t.Fatalf("accept: %v", err)
	}
	// the name is free again
	if _, err := tr.Listen(context.Background(), "host"); err != nil {
		t.Fatal(err)
	}
}
