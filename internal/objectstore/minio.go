// Package objectstore keeps original images and previews in an S3-compatible
// bucket and hands out time-limited GET links for them.
package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type Client struct {
	mc     *minio.Client
	bucket string
	region string
}

// New builds the client without contacting the server. With a region set,
// presigning also stays local.
func New(opts Options) (*Client, error) {
	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Client{mc: mc, bucket: opts.Bucket, region: opts.Region}, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

// EnsureBucket creates the bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context, logger *slog.Logger) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}
	logger.Info("bucket created", "bucket", c.bucket)
	return nil
}

// PutFile uploads the local file at path under key.
func (c *Client) PutFile(ctx context.Context, key, path, contentType string) error {
	_, err := c.mc.FPutObject(ctx, c.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a GET link for the object at path, which may carry the
// bucket name as a prefix.
func (c *Client) PresignGet(ctx context.Context, path string, expiry time.Duration) (*url.URL, error) {
	key := c.ObjectKey(path)
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, key, expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}
	return u, nil
}

func (c *Client) ObjectKey(path string) string {
	return ObjectKey(c.bucket, path)
}

// ObjectKey strips one leading "<bucket>/" from path. Stored paths written
// before keys became bucket-relative still carry it.
func ObjectKey(bucket, path string) string {
	return strings.TrimPrefix(path, bucket+"/")
}
