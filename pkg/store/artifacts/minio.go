package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type objectReader interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

type minioReader struct {
	client *minio.Client
}

func (m minioReader) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller starts reading.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

type minioSource struct {
	client objectReader
	bucket string
	prefix string
}

// NewMinioSource reads artifacts from an S3 compatible endpoint with static credentials.
func NewMinioSource(settings Settings) (Source, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("artifact bucket is not configured")
	}
	endpoint, secure, err := parseEndpoint(settings.Endpoint, settings.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKeyID, settings.SecretAccessKey, ""),
		Secure: secure,
		Region: settings.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return newMinioSource(minioReader{client: client}, settings.Bucket, settings.Prefix), nil
}

func newMinioSource(client objectReader, bucket, prefix string) *minioSource {
	return &minioSource{client: client, bucket: bucket, prefix: prefix}
}

func (s *minioSource) Fetch(ctx context.Context, benchmark, name string) (io.ReadCloser, error) {
	key := path.Join(s.prefix, benchmark, name)
	body, err := s.client.Get(ctx, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	return body, nil
}

func parseEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("endpoint is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return raw, useSSL, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint URL: %w", err)
	}
	if parsed.Host == "" {
		return "", false, fmt.Errorf("endpoint host is required")
	}
	return parsed.Host, parsed.Scheme == "https" || useSSL, nil
}
