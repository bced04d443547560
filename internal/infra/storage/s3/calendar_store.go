package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bookingcore/internal/app/policies"
)

const (
	defaultRegion = "us-east-1"
	linkExpiry    = 24 * time.Hour
)

// Options configures a CalendarStore. PublicEndpoint, when set, is the host
// clients use to download exports (for example a proxy in front of MinIO).
type Options struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	Region         string
}

// CalendarStore writes exported calendars to an S3-compatible bucket and
// hands out presigned download links.
type CalendarStore struct {
	bucket  string
	client  *minio.Client
	signer  *minio.Client
	expiry  time.Duration
	logger  *slog.Logger
	mu      sync.Mutex
	checked bool
}

func NewCalendarStore(opts Options, logger *slog.Logger) (*CalendarStore, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	region := opts.Region
	if region == "" {
		region = defaultRegion
	}

	client, err := newMinio(endpoint, opts, region)
	if err != nil {
		return nil, err
	}
	signer := client
	if public := strings.TrimSpace(opts.PublicEndpoint); public != "" {
		if signer, err = newMinio(public, opts, region); err != nil {
			return nil, err
		}
	}
	return &CalendarStore{bucket: bucket, client: client, signer: signer, expiry: linkExpiry, logger: logger}, nil
}

func newMinio(endpoint string, opts Options, region string) (*minio.Client, error) {
	secure := opts.UseSSL
	host := endpoint
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		host = parsed.Host
		secure = parsed.Scheme == "https"
	}
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return client, nil
}

func (s *CalendarStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = normalizeKey(key)
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	link, err := s.presign(ctx, key)
	if err != nil {
		return "", err
	}
	if s.logger != nil {
		s.logger.Info("calendar.export_uploaded", "bucket", s.bucket, "key", key, "size", info.Size)
	}
	return link, nil
}

// Ping reports whether the bucket is reachable.
func (s *CalendarStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *CalendarStore) presign(ctx context.Context, key string) (string, error) {
	u, err := s.signer.PresignedGetObject(ctx, s.bucket, key, s.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("s3: presign: %w", err)
	}
	return u.String(), nil
}

// ensureBucket creates the bucket on first use. A failed check is retried on the next upload.
func (s *CalendarStore) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("s3: create bucket: %w", err)
		}
	}
	s.checked = true
	return nil
}

func normalizeKey(key string) string {
	return strings.Trim(strings.TrimSpace(key), "/")
}

var _ policies.CalendarStore = (*CalendarStore)(nil)
