package dispatch

import (
	"errors"
	"reflect"
	"testing"

	"fbbridge/pkg/protocol"
)

func TestListenersAdditiveInOrder(t *testing.T) {
	l := NewListeners()
	var calls []string
	for _, name := range []string{"sidebar", "status", "panel"} {
		name := name
		if _, err := l.Register(protocol.KindNotifyUserChanged, func(protocol.Message) { calls = append(calls, name) }); err != nil {
			t.Fatal(err)
		}
	}
	n := l.Dispatch(protocol.NewNotification(protocol.NotifyUserChanged{Email: "a@b.c"}))
	if n != 3 || !reflect.DeepEqual(calls, []string{"sidebar", "status", "panel"}) {
		t.Fatalf("n=%d calls=%v", n, calls)
	}
}

func TestListenersUnregister(t *testing.T) {
	l := NewListeners()
	count := 0
	sub, _ := l.Register(protocol.KindNotifyEnv, func(protocol.Message) { count++ })
	other, _ := l.Register(protocol.KindNotifyEnv, func(protocol.Message) {})
	if l.Len(protocol.KindNotifyEnv) != 2 {
		t.Fatalf("len %d", l.Len(protocol.KindNotifyEnv))
	}
	sub.Unregister()
	sub.Unregister()
	l.Dispatch(protocol.NewNotification(protocol.NotifyEnv{}))
	if count != 0 || l.Len(protocol.KindNotifyEnv) != 1 {
		t.Fatalf("count=%d len=%d", count, l.Len(protocol.KindNotifyEnv))
	}
	other.Unregister()
	if l.Len(protocol.KindNotifyEnv) != 0 {
		t.Fatal("registry still holds listeners")
	}
}

func TestListenersUnregisterDuringDispatch(t *testing.T) {
	l := NewListeners()
	var sub *Subscription
	second := 0
	sub, _ = l.Register(protocol.KindNotifyUsers, func(protocol.Message) { sub.Unregister() })
	l.Register(protocol.KindNotifyUsers, func(protocol.Message) { second++ })
	l.Dispatch(protocol.NewNotification(protocol.NotifyUsers{}))
	l.Dispatch(protocol.NewNotification(protocol.NotifyUsers{}))
	if second != 2 || l.Len(protocol.KindNotifyUsers) != 1 {
		t.Fatalf("second=%d len=%d", second, l.Len(protocol.KindNotifyUsers))
	}
}

func TestListenersPanicIsolated(t *testing.T) {
	observeLogs(t)
	l := NewListeners()
	reached := false
	l.Register(protocol.KindNotifyEmulatorsStopped, func(protocol.Message) { panic("render failed") })
	l.Register(protocol.KindNotifyEmulatorsStopped, func(protocol.Message) { reached = true })
	l.Dispatch(protocol.NewNotification(protocol.NotifyEmulatorsStopped{}))
	if !reached {
		t.Fatal("panic stopped later listeners")
	}
}

func TestListenersTyped(t *testing.T) {
	l := NewListeners()
	var got protocol.NotifyHostingDeploy
	if _, err := On(l, func(n protocol.NotifyHostingDeploy) { got = n }); err != nil {
		t.Fatal(err)
	}
	l.Dispatch(protocol.NewNotification(protocol.NotifyHostingDeploy{Success: true, HostingURL: "https://x.web.app"}))
	if !got.Success || got.HostingURL != "https://x.web.app" {
		t.Fatalf("got %+v", got)
	}
}

func TestListenersRejectRequestKind(t *testing.T) {
	l := NewListeners()
	if _, err := l.Register(protocol.KindGetEnv, func(protocol.Message) {}); !errors.Is(err, ErrNotNotification) {
		t.Fatalf("want ErrNotNotification, got %v", err)
	}
	if n := l.Dispatch(protocol.NewRequest(protocol.GetEnv{})); n != 0 {
		t.Fatalf("request dispatched to %d listeners", n)
	}
}
