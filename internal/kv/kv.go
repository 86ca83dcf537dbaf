// Package kv holds the key/value persistence backends behind the state store.
// Values are opaque serialized documents; the store never asks a backend
// to interpret them.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	// Get returns ErrNotFound when nothing was ever stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var _ Store = (*Prefixed)(nil)

// Prefixed namespaces every key of the wrapped store, so that several
// deployments can share one redis / postgres instance.
type Prefixed struct {
	store  Store
	prefix string
}

func WithPrefix(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &Prefixed{
		store:  store,
		prefix: prefix,
	}
}

func (p *Prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.store.Set(ctx, p.prefix+key, value)
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.store.Delete(ctx, p.prefix+key)
}

func (p *Prefixed) Close() error {
	return p.store.Close()
}
