package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectPutter is the subset of *minio.Client used by ObjectSink.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ObjectConfig holds object storage settings.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// ObjectSink uploads reports to a bucket.
type ObjectSink struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewObjectSink connects to the storage endpoint in cfg.
func NewObjectSink(cfg ObjectConfig) (*ObjectSink, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	return NewObjectSinkWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewObjectSinkWithClient returns a sink that uploads through client.
func NewObjectSinkWithClient(client ObjectPutter, bucket, prefix string) *ObjectSink {
	return &ObjectSink{client: client, bucket: bucket, prefix: prefix}
}

// Publish uploads report under the sink prefix. An empty name gets a
// generated one.
func (s *ObjectSink) Publish(ctx context.Context, name, report string) (string, error) {
	if name == "" {
		name = GeneratedName(time.Now())
	}
	key := s.objectKey(name)

	data, err := encode(key, report)
	if err != nil {
		return "", err
	}

	opts := minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"}
	switch strings.ToLower(path.Ext(key)) {
	case SuffixGzip:
		opts.ContentType = "application/gzip"
	case SuffixZstd:
		opts.ContentType = "application/zstd"
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("upload report %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *ObjectSink) objectKey(name string) string {
	name = strings.TrimLeft(name, "/")
	if s.prefix == "" {
		return name
	}
	return strings.TrimRight(s.prefix, "/") + "/" + name
}

// GeneratedName returns a unique report name stamped with t.
func GeneratedName(t time.Time) string {
	return fmt.Sprintf("report-%s-%s.txt", t.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
}
