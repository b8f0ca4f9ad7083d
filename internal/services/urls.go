package services

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// ObjectStore is the part of the content store the services need.
// PresignGet accepts paths with or without the bucket prefix.
type ObjectStore interface {
	PutFile(ctx context.Context, key, path, contentType string) error
	PresignGet(ctx context.Context, path string, expiry time.Duration) (*url.URL, error)
}

type URLSigner struct {
	store  ObjectStore
	expiry time.Duration
	logger *slog.Logger
}

func NewURLSigner(store ObjectStore, expiry time.Duration, logger *slog.Logger) *URLSigner {
	return &URLSigner{store: store, expiry: expiry, logger: logger.With("component", "urls")}
}

// Sign turns a stored object path into a time-limited link. A nil path, or
// any failure to presign, yields nil.
func (s *URLSigner) Sign(ctx context.Context, path *string) *string {
	if path == nil {
		return nil
	}
	u, err := s.store.PresignGet(ctx, *path, s.expiry)
	if err != nil {
		s.logger.Warn("presign failed", "path", *path, "error", err)
		presignFailures.Inc()
		return nil
	}
	link := u.String()
	return &link
}
