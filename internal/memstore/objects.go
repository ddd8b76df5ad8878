package memstore

import (
	"context"
	"io"
	"sync"
)

// Objects is an in-memory object store.
type Objects struct {
	mu      sync.Mutex
	data    map[string][]byte
	Deleted []string

	ErrUpload error
}

func NewObjects() *Objects { return &Objects{data: map[string][]byte{}} }

func (o *Objects) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if o.ErrUpload != nil {
		return "", o.ErrUpload
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data[key] = b
	return "https://objects.test/" + key, nil
}

func (o *Objects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.data, key)
	o.Deleted = append(o.Deleted, key)
	return nil
}

func (o *Objects) Has(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.data[key]
	return ok
}

func (o *Objects) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.data)
}
