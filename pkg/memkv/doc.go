// Package memkv is a small in-memory key/value store with per-key TTL.
//
// Values are byte slices copied on the way in and out. Keys are spread over
// shards guarded by their own RWMutex. Expired keys are removed lazily on
// access and periodically by a janitor goroutine stopped by Close.
//
// The host keeps its process-lifetime session state here: known accounts,
// the selected project and cached hosting channel listings. Nothing is
// persisted across restarts.
package memkv
