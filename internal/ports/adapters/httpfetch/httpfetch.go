// Package httpfetch resolves input references: local paths are used as-is,
// http/https URLs are downloaded to a temp file the caller removes.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 300 * time.Second

type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	tempDir string
}

type Option func(*Fetcher)

func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

func WithTempDir(dir string) Option {
	return func(f *Fetcher) { f.tempDir = dir }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  http.DefaultClient,
		timeout: defaultTimeout,
		tempDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsRemoteURL reports whether src needs downloading.
func IsRemoteURL(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Resolve returns a local path for src. For remote URLs the returned path
// is a downloaded temp file and temp is true; the caller owns its removal.
func (f *Fetcher) Resolve(ctx context.Context, src string) (string, bool, error) {
	if !IsRemoteURL(src) {
		if _, err := os.Stat(src); err != nil {
			return "", false, fmt.Errorf("stat video: %w", err)
		}
		return src, false, nil
	}

	local, err := f.download(ctx, src)
	if err != nil {
		return "", false, err
	}
	return local, true, nil
}

func (f *Fetcher) download(ctx context.Context, src string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download video: unexpected status %s", resp.Status)
	}

	dst := filepath.Join(f.tempDir, "shotcut-"+uuid.NewString()+remoteExt(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("download video: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst, nil
}

// remoteExt pulls the extension from the URL path, ignoring query strings.
func remoteExt(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return ".mp4"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".mp4"
}
