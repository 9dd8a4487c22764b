package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fbbridge/pkg/protocol"
)

type recorder struct {
	mu   sync.Mutex
	sent []protocol.Message
	err  error
}

func (r *recorder) Send(m protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

func (r *recorder) kinds() []protocol.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]protocol.Kind, len(r.sent))
	for i, m := range r.sent {
		out[i] = m.Kind()
	}
	return out
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestHostEmitsDocumentedNotification(t *testing.T) {
	out := &recorder{}
	h := NewHost(out)
	Handle(h, func(_ context.Context, req protocol.SelectProject) (protocol.Notification, error) {
		return protocol.NotifyProjectChanged{ProjectID: "p-" + req.Email}, nil
	})

	h.Dispatch(context.Background(), protocol.NewRequest(protocol.SelectProject{Email: "a@b.c"}))
	h.Wait()

	if len(out.sent) != 1 {
		t.Fatalf("want one notification, got %v", out.kinds())
	}
	p, err := protocol.PayloadAs[protocol.NotifyProjectChanged](out.sent[0])
	if err != nil || p.ProjectID != "p-a@b.c" {
		t.Fatalf("payload %+v %v", p, err)
	}
}

func TestHostLastRegistrationWins(t *testing.T) {
	out := &recorder{}
	h := NewHost(out)
	Handle(h, func(context.Context, protocol.GetEnv) (protocol.Notification, error) {
		return protocol.NotifyEnv{IsMonospace: false}, nil
	})
	Handle(h, func(context.Context, protocol.GetEnv) (protocol.Notification, error) {
		return protocol.NotifyEnv{IsMonospace: true}, nil
	})
	h.Dispatch(context.Background(), protocol.NewRequest(protocol.GetEnv{}))
	h.Wait()
	p, _ := protocol.PayloadAs[protocol.NotifyEnv](out.sent[0])
	if len(out.sent) != 1 || !p.IsMonospace {
		t.Fatalf("replacement handler not used: %v", out.kinds())
	}
}

func TestHostFireAndForget(t *testing.T) {
	out := &recorder{}
	h := NewHost(out)
	called := false
	Handle(h, func(context.Context, protocol.ShowMessage) (protocol.Notification, error) {
		called = true
		return nil, nil
	})
	h.Dispatch(context.Background(), protocol.NewRequest(protocol.ShowMessage{Msg: "hi"}))
	h.Wait()
	if !called || len(out.sent) != 0 {
		t.Fatalf("called=%v sent=%v", called, out.kinds())
	}
}

func TestHostHandlerErrorSendsNothing(t *testing.T) {
	logs := observeLogs(t)
	out := &recorder{}
	h := NewHost(out)
	boom := errors.New("deploy exploded")
	Handle(h, func(context.Context, protocol.HostingDeploy) (protocol.Notification, error) {
		return nil, boom
	})
	h.Dispatch(context.Background(), protocol.NewRequest(protocol.HostingDeploy{Target: "live"}))
	h.Wait()
	if len(out.sent) != 0 {
		t.Fatalf("sent %v", out.kinds())
	}
	if logs.FilterMessage("request handler failed").Len() != 1 {
		t.Fatalf("failure not logged: %v", logs.All())
	}
}

func TestHostRecoversPanics(t *testing.T) {
	logs := observeLogs(t)
	out := &recorder{}
	h := NewHost(out)
	Handle(h, func(context.Context, protocol.GetUsers) (protocol.Notification, error) {
		panic("nil map")
	})
	Handle(h, func(context.Context, protocol.GetEnv) (protocol.Notification, error) {
		return protocol.NotifyEnv{}, nil
	})
	h.Dispatch(context.Background(), protocol.NewRequest(protocol.GetUsers{}))
	h.Wait()
	h.Dispatch(context.Background(), protocol.NewRequest(protocol.GetEnv{}))
	h.Wait()

	if got := out.kinds(); len(got) != 1 || got[0] != protocol.KindNotifyEnv {
		t.Fatalf("dispatcher did not survive panic: %v", got)
	}
	entries := logs.FilterMessage("request handler failed").All()
	if len(entries) != 1 {
		t.Fatalf("panic not logged: %v", logs.All())
	}
	if err, _ := entries[0].ContextMap()["error"].(string); err == "" {
		t.Fatalf("missing error field: %v", entries[0].ContextMap())
	}
}

func TestHostNoHandlerIsLogged(t *testing.T) {
	logs := observeLogs(t)
	out := &recorder{}
	h := NewHost(out)
	h.Dispatch(context.Background(), protocol.NewRequest(protocol.GetChannels{}))
	h.Wait()
	if len(out.sent) != 0 {
		t.Fatalf("sent %v", out.kinds())
	}
	entries := logs.FilterMessage("protocol misuse").All()
	if len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("missing no-handler log: %v", logs.All())
	}
	if entries[0].ContextMap()["error"] != ErrNoHandler.Error() {
		t.Fatalf("error field: %v", entries[0].ContextMap())
	}
}

func TestHostDropsUndocumentedNotification(t *testing.T) {
	logs := observeLogs(t)
	out := &recorder{}
	h := NewHost(out)
	Handle(h, func(context.Context, protocol.GetWorkspaceFolders) (protocol.Notification, error) {
		return protocol.NotifyUsers{}, nil
	})
	h.Dispatch(context.Background(), protocol.NewRequest(protocol.GetWorkspaceFolders{}))
	h.Wait()
	if len(out.sent) != 0 {
		t.Fatalf("sent %v", out.kinds())
	}
	if logs.FilterMessage("dropping notification").Len() != 1 {
		t.Fatal("undocumented notification not logged")
	}
}

func TestHostRegisterRejectsNotificationKind(t *testing.T) {
	h := NewHost(&recorder{})
	err := h.Register(protocol.KindNotifyEnv, func(context.Context, protocol.Message) (protocol.Notification, error) { return nil, nil })
	if !errors.Is(err, ErrNotRequest) {
		t.Fatalf("want ErrNotRequest, got %v", err)
	}
	if h.Registered(protocol.KindNotifyEnv) {
		t.Fatal("notification kind registered")
	}
}

func TestHostNotificationsFollowCompletionOrder(t *testing.T) {
	out := &recorder{}
	h := NewHost(out)
	release := make(chan struct{})
	Handle(h, func(context.Context, protocol.GetWorkspaceFolders) (protocol.Notification, error) {
		<-release
		return protocol.NotifyWorkspaceFolders{Folders: []string{"/w"}}, nil
	})
	Handle(h, func(context.Context, protocol.GetUsers) (protocol.Notification, error) {
		return protocol.NotifyUsers{}, nil
	})

	ctx := context.Background()
	h.Dispatch(ctx, protocol.NewRequest(protocol.GetWorkspaceFolders{}))
	h.Dispatch(ctx, protocol.NewRequest(protocol.GetUsers{}))

	deadline := time.Now().Add(2 * time.Second)
	for len(out.kinds()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("fast handler blocked behind slow one")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	h.Wait()

	got := out.kinds()
	if len(got) != 2 || got[0] != protocol.KindNotifyUsers || got[1] != protocol.KindNotifyWorkspaceFolders {
		t.Fatalf("order: %v", got)
	}
}

func TestHostNotifyReportsSendFailure(t *testing.T) {
	out := &recorder{err: errors.New("link down")}
	h := NewHost(out)
	if err := h.Notify(protocol.NotifyEmulatorsStopped{}); err == nil {
		t.Fatal("expected send error")
	}
}
