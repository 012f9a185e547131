package memstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned by KV.Get for absent or expired keys.
var ErrMiss = errors.New("memstore: key not found")

type kvItem struct {
	value     string
	expiresAt time.Time
}

// KV is an expiring key/value map standing in for Redis in development and tests.
type KV struct {
	mu    sync.Mutex
	items map[string]kvItem
	now   func() time.Time
}

func NewKV() *KV {
	return &KV{items: make(map[string]kvItem), now: time.Now}
}

func (k *KV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.items[key] = kvItem{value: value, expiresAt: k.now().Add(ttl)}
	return nil
}

func (k *KV) Get(_ context.Context, key string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, ok := k.items[key]
	if !ok || !k.now().Before(it.expiresAt) {
		delete(k.items, key)
		return "", ErrMiss
	}
	return it.value, nil
}

func (k *KV) Del(_ context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		delete(k.items, key)
	}
	return nil
}
