package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// BlobStore materializes destinations for file submissions and attachments.
// The tracking core never inspects file content; it only stores the public
// URL a blob ends up at.
type BlobStore interface {
	CreateOrGetFolder(ctx context.Context, name, parent string) (string, error)
	Upload(ctx context.Context, data []byte, name, folder string) (string, error)
	Download(ctx context.Context, publicURL string) ([]byte, string, error)
}

type BlobConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Timeout   time.Duration
}

type minioBlobStore struct {
	client *minio.Client
	bucket string
	useSSL bool
	logger zerolog.Logger
}

func NewMinioBlobStore(cfg BlobConfig, logger zerolog.Logger) (BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &minioBlobStore{
		client: client,
		bucket: cfg.Bucket,
		useSSL: cfg.UseSSL,
		logger: logger,
	}, nil
}

// CreateOrGetFolder ensures a key prefix exists by writing a zero-byte
// marker object, mirroring how folder provisioning behaves on drive-like
// backends. The returned id is the prefix itself.
func (s *minioBlobStore) CreateOrGetFolder(ctx context.Context, name, parent string) (string, error) {
	prefix := sanitizeKey(name)
	if parent != "" {
		prefix = strings.TrimSuffix(parent, "/") + "/" + prefix
	}

	marker := prefix + "/.keep"
	_, err := s.client.StatObject(ctx, s.bucket, marker, minio.StatObjectOptions{})
	if err == nil {
		return prefix, nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return "", fmt.Errorf("failed to check folder marker: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, marker, bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create folder marker: %w", err)
	}

	return prefix, nil
}

func (s *minioBlobStore) Upload(ctx context.Context, data []byte, name, folder string) (string, error) {
	key := sanitizeKey(name)
	if folder != "" {
		key = strings.TrimSuffix(folder, "/") + "/" + key
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug().Str("key", key).Int("size", len(data)).Msg("Blob uploaded")
	return s.publicURL(key), nil
}

func (s *minioBlobStore) Download(ctx context.Context, publicURL string) ([]byte, string, error) {
	key, err := s.keyFromURL(publicURL)
	if err != nil {
		return nil, "", err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object: %w", err)
	}

	parts := strings.Split(key, "/")
	return data, parts[len(parts)-1], nil
}

func (s *minioBlobStore) publicURL(key string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, key)
}

func (s *minioBlobStore) keyFromURL(publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("invalid blob url: %w", err)
	}

	path := strings.TrimPrefix(u.Path, "/")
	if !strings.HasPrefix(path, s.bucket+"/") {
		return "", fmt.Errorf("blob url %q does not belong to bucket %s", publicURL, s.bucket)
	}

	key := strings.TrimPrefix(path, s.bucket+"/")
	if key == "" {
		return "", fmt.Errorf("blob url %q has an empty object key", publicURL)
	}

	return key, nil
}

func sanitizeKey(name string) string {
	replacer := strings.NewReplacer(" ", "_", "\\", "_", "?", "_", "#", "_")
	return replacer.Replace(name)
}
