package memkv

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(opts Options) (*Store, *fakeClock) {
	s := New(opts)
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s.nowFn = clk.Now
	return s, clk
}

func TestSetGetCopies(t *testing.T) {
	s, _ := newTestStore(Options{})
	defer s.Close()

	in := []byte("abc")
	if err := s.Set("k1", in, 0); err != nil {
		t.Fatal(err)
	}
	in[0] = 'X'
	v, ok := s.Get("k1")
	if !ok || string(v) != "abc" {
		t.Fatalf("Get: ok=%v v=%q", ok, v)
	}
	v[0] = 'Y'
	if v2, _ := s.Get("k1"); string(v2) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", v2)
	}
	if st := s.Stats(); st.Keys != 1 || st.Bytes != 3 || st.Hits != 2 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestExpireAndTTL(t *testing.T) {
	s, clk := newTestStore(Options{})
	defer s.Close()

	_ = s.Set("k", []byte("v"), time.Second)
	if ttl, ok := s.TTL("k"); !ok || ttl != time.Second {
		t.Fatalf("TTL: %v %v", ttl, ok)
	}
	if !s.Expire("k", 0) {
		t.Fatal("Expire on live key failed")
	}
	if ttl, ok := s.TTL("k"); !ok || ttl != 0 {
		t.Fatalf("persistent TTL: %v %v", ttl, ok)
	}
	s.Expire("k", 10*time.Millisecond)
	clk.Advance(20 * time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Fatal("expired key still readable")
	}
	if s.Expire("k", time.Second) {
		t.Fatal("Expire on missing key succeeded")
	}
	if st := s.Stats(); st.Keys != 0 || st.Expired != 1 {
		t.Fatalf("stats after expiry: %+v", st)
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	s, clk := newTestStore(Options{})
	defer s.Close()
	_ = s.Set("a", []byte("1"), time.Second)
	_ = s.Set("b", []byte("2"), 0)
	clk.Advance(2 * time.Second)
	s.sweep()
	if got := s.Keys(""); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("keys after sweep: %v", got)
	}
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore(Options{})
	defer s.Close()

	appendX := func(old []byte) []byte { return append(old, 'x') }
	for i := 0; i < 3; i++ {
		if err := s.Update("k", appendX); err != nil {
			t.Fatal(err)
		}
	}
	if v, _ := s.Get("k"); string(v) != "xxx" {
		t.Fatalf("value: %q", v)
	}
	if err := s.Update("k", func([]byte) []byte { return nil }); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("k"); ok {
		t.Fatal("nil update should delete")
	}
}

func TestMaxBytes(t *testing.T) {
	s, _ := newTestStore(Options{MaxBytes: 4})
	defer s.Close()

	if err := s.Set("a", []byte("abc"), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("b", []byte("de"), 0); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("want ErrTooLarge, got %v", err)
	}
	if err := s.Set("a", []byte("abcd"), 0); err != nil {
		t.Fatalf("replace within limit: %v", err)
	}
	s.Delete("a")
	if err := s.Set("b", []byte("de"), 0); err != nil {
		t.Fatalf("after delete: %v", err)
	}
	if st := s.Stats(); st.Bytes != 2 {
		t.Fatalf("bytes: %d", st.Bytes)
	}
}

func TestKeysPrefix(t *testing.T) {
	s, _ := newTestStore(Options{Shards: 4})
	defer s.Close()
	for _, k := range []string{"user/b", "user/a", "project", "user/c"} {
		_ = s.Set(k, []byte("1"), 0)
	}
	if got := s.Keys("user/"); !reflect.DeepEqual(got, []string{"user/a", "user/b", "user/c"}) {
		t.Fatalf("keys: %v", got)
	}
}

func TestConcurrentUpdate(t *testing.T) {
	s, _ := newTestStore(Options{})
	defer s.Close()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update("n", func(old []byte) []byte { return append(old, '.') })
		}()
	}
	wg.Wait()
	if v, _ := s.Get("n"); len(v) != 50 {
		t.Fatalf("lost updates: %d", len(v))
	}
}
