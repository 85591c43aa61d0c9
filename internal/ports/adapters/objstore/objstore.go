// Package objstore uploads cut segments to S3-compatible object storage.
package objstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint        string // host[:port], no scheme
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UseSSL          bool
	PublicBaseURL   string // optional public/CDN base; derived from endpoint+bucket when empty
}

// ConfigFromEnv reads the OSS_* environment surface.
func ConfigFromEnv() Config {
	return Config{
		Endpoint:        envOr("OSS_ENDPOINT", "localhost:9000"),
		AccessKeyID:     os.Getenv("OSS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("OSS_ACCESS_KEY_SECRET"),
		Bucket:          envOr("OSS_BUCKET", "shotcut-segments"),
		Region:          os.Getenv("OSS_REGION"),
		UseSSL:          strings.EqualFold(os.Getenv("OSS_USE_SSL"), "true"),
		PublicBaseURL:   os.Getenv("OSS_PUBLIC_BASE_URL"),
	}
}

func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("object storage endpoint is empty")
	}
	if c.Bucket == "" {
		return fmt.Errorf("object storage bucket is empty")
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return fmt.Errorf("object storage credentials are empty (set OSS_ACCESS_KEY_ID / OSS_ACCESS_KEY_SECRET)")
	}
	return nil
}

type Adapter struct {
	client *minio.Client
	cfg    Config
}

func New(cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage client: %w", err)
	}
	return &Adapter{client: client, cfg: cfg}, nil
}

// Upload stores the local file under "<taskID><ext>" and returns its
// public URL.
func (a *Adapter) Upload(ctx context.Context, localPath, taskID string) (string, error) {
	key := objectKey(localPath, taskID)
	_, err := a.client.FPutObject(ctx, a.cfg.Bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(filepath.Ext(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return a.publicURL(key), nil
}

func objectKey(localPath, taskID string) string {
	ext := filepath.Ext(localPath)
	if ext == "" {
		ext = ".mp4"
	}
	return taskID + ext
}

func (a *Adapter) publicURL(key string) string {
	if a.cfg.PublicBaseURL != "" {
		return strings.TrimRight(a.cfg.PublicBaseURL, "/") + "/" + key
	}
	scheme := "http"
	if a.cfg.UseSSL {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   a.cfg.Endpoint,
		Path:   path.Join(a.cfg.Bucket, key),
	}
	return u.String()
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "video/mp4"
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
