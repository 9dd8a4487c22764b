package memkv

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTooLarge is returned when a write would exceed Options.MaxBytes.
var ErrTooLarge = errors.New("memkv: store size limit exceeded")

type Options struct {
	Shards          int           // number of shards, default 16
	MaxBytes        uint64        // limit on the total size of values, 0 = unlimited
	JanitorInterval time.Duration // expired key sweep period, default 1m
}

func (o Options) withDefaults() Options {
	if o.Shards <= 0 {
		o.Shards = 16
	}
	if o.JanitorInterval <= 0 {
		o.JanitorInterval = time.Minute
	}
	return o
}

type Store struct {
	opts   Options
	shards []shard
	nowFn  func() time.Time

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup

	keys    atomic.Int64
	bytes   atomic.Int64
	hits    atomic.Uint64
	misses  atomic.Uint64
	expired atomic.Uint64
}

type shard struct {
	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	val      []byte
	expireAt int64 // unix nano, 0 = never
}

func (e entry) expiredAt(now int64) bool { return e.expireAt != 0 && e.expireAt <= now }

func New(opts Options) *Store {
	opts = opts.withDefaults()
	s := &Store{
		opts:    opts,
		shards:  make([]shard, opts.Shards),
		nowFn:   time.Now,
		closeCh: make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i].m = make(map[string]entry)
	}
	s.wg.Add(1)
	go s.janitor()
	return s
}

// Close stops the janitor. The store remains readable.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.closeCh) })
	s.wg.Wait()
}

func (s *Store) shardFor(key string) *shard {
	// FNV-1a
	var h uint64 = 1469598103934665603
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= 1099511628211
	}
	return &s.shards[h%uint64(len(s.shards))]
}

func (s *Store) deadline(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return s.nowFn().Add(ttl).UnixNano()
}

// reserve accounts for a size change, refusing growth past MaxBytes.
func (s *Store) reserve(delta int64) bool {
	if delta <= 0 || s.opts.MaxBytes == 0 {
		s.bytes.Add(delta)
		return true
	}
	for {
		cur := s.bytes.Load()
		if uint64(cur+delta) > s.opts.MaxBytes {
			return false
		}
		if s.bytes.CompareAndSwap(cur, cur+delta) {
			return true
		}
	}
}

// Set stores val under key. A ttl <= 0 never expires.
func (s *Store) Set(key string, val []byte, ttl time.Duration) error {
	v := append([]byte(nil), val...)
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, existed := sh.m[key]
	if existed && prev.expiredAt(s.nowFn().UnixNano()) {
		s.dropLocked(sh, key, prev)
		existed = false
		prev = entry{}
	}
	if !s.reserve(int64(len(v) - len(prev.val))) {
		return ErrTooLarge
	}
	sh.m[key] = entry{val: v, expireAt: s.deadline(ttl)}
	if !existed {
		s.keys.Add(1)
	}
	return nil
}

// Get returns a copy of the value for key.
func (s *Store) Get(key string) ([]byte, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	e, ok := sh.m[key]
	sh.mu.RUnlock()
	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	if e.expiredAt(s.nowFn().UnixNano()) {
		sh.mu.Lock()
		if cur, ok := sh.m[key]; ok && cur.expiredAt(s.nowFn().UnixNano()) {
			s.dropLocked(sh, key, cur)
			s.expired.Add(1)
		}
		sh.mu.Unlock()
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return append([]byte(nil), e.val...), true
}

// Exists reports whether key holds a live value.
func (s *Store) Exists(key string) bool {
	sh := s.shardFor(key)
	sh.mu.RLock()
	e, ok := sh.m[key]
	sh.mu.RUnlock()
	return ok && !e.expiredAt(s.nowFn().UnixNano())
}

// Update replaces the value for key with fn(old) atomically. old is nil when
// the key is missing. Returning nil deletes the key. The existing TTL is
// kept.
func (s *Store) Update(key string, fn func(old []byte) []byte) error {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, existed := sh.m[key]
	if existed && prev.expiredAt(s.nowFn().UnixNano()) {
		s.dropLocked(sh, key, prev)
		existed = false
		prev = entry{}
	}
	var old []byte
	if existed {
		old = append([]byte(nil), prev.val...)
	}
	next := fn(old)
	if next == nil {
		if existed {
			s.dropLocked(sh, key, prev)
		}
		return nil
	}
	v := append([]byte(nil), next...)
	if !s.reserve(int64(len(v) - len(prev.val))) {
		return ErrTooLarge
	}
	sh.m[key] = entry{val: v, expireAt: prev.expireAt}
	if !existed {
		s.keys.Add(1)
	}
	return nil
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.m[key]
	if !ok {
		return false
	}
	s.dropLocked(sh, key, e)
	return !e.expiredAt(s.nowFn().UnixNano())
}

// Expire sets a new ttl on an existing key. A ttl <= 0 removes expiry.
func (s *Store) Expire(key string, ttl time.Duration) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.m[key]
	if !ok || e.expiredAt(s.nowFn().UnixNano()) {
		return false
	}
	e.expireAt = s.deadline(ttl)
	sh.m[key] = e
	return true
}

// TTL returns the remaining lifetime of key. The duration is 0 for keys
// without expiry.
func (s *Store) TTL(key string) (time.Duration, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	e, ok := sh.m[key]
	sh.mu.RUnlock()
	now := s.nowFn().UnixNano()
	if !ok || e.expiredAt(now) {
		return 0, false
	}
	if e.expireAt == 0 {
		return 0, true
	}
	return time.Duration(e.expireAt - now), true
}

// Keys returns the live keys starting with prefix, sorted.
func (s *Store) Keys(prefix string) []string {
	now := s.nowFn().UnixNano()
	var out []string
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for k, e := range sh.m {
			if strings.HasPrefix(k, prefix) && !e.expiredAt(now) {
				out = append(out, k)
			}
		}
		sh.mu.RUnlock()
	}
	sort.Strings(out)
	return out
}

type Stats struct {
	Keys    int64
	Bytes   int64
	Hits    uint64
	Misses  uint64
	Expired uint64
}

func (s *Store) Stats() Stats {
	return Stats{
		Keys:    s.keys.Load(),
		Bytes:   s.bytes.Load(),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Expired: s.expired.Load(),
	}
}

func (s *Store) dropLocked(sh *shard, key string, e entry) {
	delete(sh.m, key)
	s.keys.Add(-1)
	s.bytes.Add(-int64(len(e.val)))
}

func (s *Store) sweep() {
	now := s.nowFn().UnixNano()
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, e := range sh.m {
			if e.expiredAt(now) {
				s.dropLocked(sh, k, e)
				s.expired.Add(1)
			}
		}
		sh.mu.Unlock()
	}
}

func (s *Store) janitor() {
	defer s.wg.Done()
	t := time.NewTicker(s.opts.JanitorInterval)
	defer t.Stop()
	for {
		select {
		case <-s.closeCh:
			return
		case <-t.C:
			s.sweep()
		}
	}
}
