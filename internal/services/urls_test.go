package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLSigner_Sign(t *testing.T) {
	store := newFakeStore()
	signer := NewURLSigner(store, time.Hour, discardLogger())
	ctx := context.Background()

	bare := "nature/forest/previews/a.webp"
	prefixed := "photo-gallery/nature/forest/previews/a.webp"

	a := signer.Sign(ctx, &bare)
	b := signer.Sign(ctx, &prefixed)
	require.NotNil(t, a)
	require.NotNil(t, b)

	ua, err := url.Parse(*a)
	require.NoError(t, err)
	ub, err := url.Parse(*b)
	require.NoError(t, err)
	assert.Equal(t, "/photo-gallery/nature/forest/previews/a.webp", ua.Path)
	assert.Equal(t, ua.Path, ub.Path)
	assert.Equal(t, "3600", ua.Query().Get("X-Amz-Expires"))
}

func TestURLSigner_NilAndFailure(t *testing.T) {
	store := newFakeStore()
	signer := NewURLSigner(store, time.Hour, discardLogger())
	ctx := context.Background()

	assert.Nil(t, signer.Sign(ctx, nil))

	store.presignErr = errors.New("no credentials")
	p := "a/b/c.jpg"
	assert.Nil(t, signer.Sign(ctx, &p))
}
