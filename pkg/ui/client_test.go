package ui_test

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"fbbridge/pkg/dispatch"
	"fbbridge/pkg/host"
	"fbbridge/pkg/memkv"
	"fbbridge/pkg/protocol"
	"fbbridge/pkg/transport"
	"fbbridge/pkg/transport/mem"
	"fbbridge/pkg/ui"
)

func link(t *testing.T) (hostSide *transport.Adapter, client *ui.Client) {
	t.Helper()
	srv, cli := mem.Pipe(transport.PeerInfo{ID: "view-1"}, "host")
	ctx := context.Background()
	hs, _ := srv.OpenStream(ctx)
	us, _ := cli.OpenStream(ctx)
	opts := transport.Options{Format: protocol.FormatJSON}
	hopts, uopts := opts, opts
	hopts.Side, uopts.Side = protocol.SideHost, protocol.SideUI
	hostSide = transport.NewAdapter(hs, srv.Peer(), hopts)
	client, err := ui.New(transport.NewAdapter(us, cli.Peer(), uopts))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = hostSide.Close(); _ = client.Close() })
	return hostSide, client
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewRejectsHostAdapter(t *testing.T) {
	hostSide, _ := link(t)
	if _, err := ui.New(hostSide); err == nil {
		t.Fatal("host-side adapter accepted")
	}
}

func TestInitAgainstHost(t *testing.T) {
	hostSide, client := link(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := memkv.New(memkv.Options{})
	defer kv.Close()
	cfg := host.FileConfigReader{Dir: t.TempDir()}
	accounts, err := host.NewMemoryAccounts(kv, []protocol.User{{Email: "dev@example.com"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	d := dispatch.NewHost(hostSide)
	host.Register(d, host.Services{
		Monospace: true,
		Accounts:  accounts,
		Projects:  host.NewSessionProjects(kv, cfg, nil),
		Config:    cfg,
		Workspace: host.DirWorkspace{},
		Display:   host.LogDisplay{},
	})
	if err := hostSide.OnReceive(func(m protocol.Message) { d.Dispatch(ctx, m) }); err != nil {
		t.Fatal(err)
	}
	go func() { _ = hostSide.Run(ctx) }()

	var (
		mu   sync.Mutex
		seen = map[protocol.Kind]protocol.Message{}
	)
	record := func(m protocol.Message) {
		mu.Lock()
		seen[m.Kind()] = m
		mu.Unlock()
	}
	for _, k := range []protocol.Kind{
		protocol.KindNotifyEnv,
		protocol.KindNotifyUsers,
		protocol.KindNotifyProjectChanged,
		protocol.KindNotifyFirebaseJSON,
		protocol.KindNotifyWorkspaceFolders,
	} {
		if _, err := client.Listeners().Register(k, record); err != nil {
			t.Fatal(err)
		}
	}
	go func() { _ = client.Run(ctx) }()

	if err := client.Init(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "initial state", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 5
	})

	mu.Lock()
	defer mu.Unlock()
	env, _ := protocol.PayloadAs[protocol.NotifyEnv](seen[protocol.KindNotifyEnv])
	if !env.IsMonospace {
		t.Fatal("env lost monospace flag")
	}
	users, _ := protocol.PayloadAs[protocol.NotifyUsers](seen[protocol.KindNotifyUsers])
	if len(users.Users) != 1 || users.Users[0].Email != "dev@example.com" {
		t.Fatalf("users %+v", users)
	}
	fj, _ := protocol.PayloadAs[protocol.NotifyFirebaseJSON](seen[protocol.KindNotifyFirebaseJSON])
	if !reflect.DeepEqual(fj.FirebaseJSON, protocol.DefaultFirebaseConfig()) {
		t.Fatalf("firebase.json %+v", fj.FirebaseJSON)
	}
	folders, _ := protocol.PayloadAs[protocol.NotifyWorkspaceFolders](seen[protocol.KindNotifyWorkspaceFolders])
	if folders.Folders == nil || len(folders.Folders) != 0 {
		t.Fatalf("folders %#v", folders.Folders)
	}
}

// view keeps the active account only while it is in the account list.
type view struct {
	mu     sync.Mutex
	users  []string
	active string
	events int
}

func (v *view) listen(t *testing.T, l *dispatch.Listeners) {
	t.Helper()
	if _, err := dispatch.On(l, func(n protocol.NotifyUsers) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.users = v.users[:0]
		for _, u := range n.Users {
			v.users = append(v.users, u.Email)
		}
		v.events++
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := dispatch.On(l, func(n protocol.NotifyUserChanged) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.active = n.Email
		v.events++
	}); err != nil {
		t.Fatal(err)
	}
}

func (v *view) activeListed() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, u := range v.users {
		if u == v.active {
			return v.active, true
		}
	}
	return "", false
}

func TestListenersTolerateEitherOrder(t *testing.T) {
	users := protocol.NewNotification(protocol.NotifyUsers{Users: []protocol.User{{Email: "a@example.com"}, {Email: "b@example.com"}}})
	changed := protocol.NewNotification(protocol.NotifyUserChanged{Email: "b@example.com"})

	for name, order := range map[string][]protocol.Message{
		"users-first":   {users, changed},
		"changed-first": {changed, users},
	} {
		t.Run(name, func(t *testing.T) {
			hostSide, client := link(t)
			v := &view{}
			v.listen(t, client.Listeners())
			go func() { _ = client.Run(context.Background()) }()

			for _, m := range order {
				if err := hostSide.Send(m); err != nil {
					t.Fatal(err)
				}
			}
			waitFor(t, "both notifications", func() bool {
				v.mu.Lock()
				defer v.mu.Unlock()
				return v.events == 2
			})
			if got, ok := v.activeListed(); !ok || got != "b@example.com" {
				t.Fatalf("active %q listed=%v", got, ok)
			}
		})
	}
}

func TestSendRejectsWhenClosed(t *testing.T) {
	_, client := link(t)
	_ = client.Close()
	if err := client.Send(protocol.GetEnv{}); err == nil {
		t.Fatal("send on closed client succeeded")
	}
	select {
	case <-client.Done():
	default:
		t.Fatal("done not closed")
	}
}
