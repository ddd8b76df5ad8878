package storage

import (
	"context"
	"errors"
	"io"
)

var ErrDisabled = errors.New("object storage is not configured")

// ObjectStore keeps uploaded files and hands out their public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// Disabled rejects every upload. Used when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Delete(context.Context, string) error { return nil }
