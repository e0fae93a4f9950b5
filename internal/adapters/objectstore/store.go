// Package objectstore keeps uploaded files in named buckets on an afero
// filesystem and hands out public URLs for them.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Buckets.
const (
	BucketLeiding = "leiding" // staff photos
	BucketPosts   = "posts"   // post cover images
	BucketFiles   = "files"   // shared PDFs referenced from settings
)

// URLPrefix is the path under which stored objects are served.
const URLPrefix = "/storage/"

var (
	ErrUnknownBucket = errors.New("unknown storage bucket")
	ErrInvalidKey    = errors.New("invalid object key")
	ErrForeignURL    = errors.New("url does not point into this bucket")
)

var buckets = map[string]bool{BucketLeiding: true, BucketPosts: true, BucketFiles: true}

// Store writes objects to fs and builds URLs from baseURL.
type Store struct {
	fs      afero.Fs
	baseURL string
}

// New returns a store rooted at fs. baseURL is the public origin, e.g.
// "https://admin.ksapetegem.be"; empty yields root-relative URLs.
func New(fs afero.Fs, baseURL string) *Store {
	return &Store{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewOnDisk stores objects below root on the local filesystem.
func NewOnDisk(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), baseURL), nil
}

// Upload writes r to bucket/key, replacing any existing object, and returns its public URL.
// PRE: bucket is known; key is a relative path without ".."
// POST: the object is readable through Handler at the returned URL
func (s *Store) Upload(ctx context.Context, bucket, key string, r io.Reader) (string, error) {
	name, err := objectPath(bucket, key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	f, err := s.fs.Create(name)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(name)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return s.URL(bucket, key), nil
}

// URL returns the public URL of bucket/key.
func (s *Store) URL(bucket, key string) string {
	return s.baseURL + URLPrefix + bucket + "/" + strings.TrimLeft(key, "/")
}

// Delete removes the object a public URL points to. A missing object is not an error.
// PRE: publicURL was returned by Upload for bucket
func (s *Store) Delete(ctx context.Context, bucket, publicURL string) error {
	key, err := KeyFromURL(bucket, publicURL)
	if err != nil {
		return err
	}
	name, err := objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Exists reports whether bucket/key is stored.
func (s *Store) Exists(bucket, key string) (bool, error) {
	name, err := objectPath(bucket, key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, name)
}

// Handler serves stored objects; mount it at URLPrefix. Directory listings are not served.
func (s *Store) Handler() http.Handler {
	files := http.StripPrefix(strings.TrimRight(URLPrefix, "/"), http.FileServer(afero.NewHttpFs(s.fs).Dir("/")))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// KeyFromURL extracts the object key from a public URL of bucket. Absolute
// and root-relative URLs are accepted.
func KeyFromURL(bucket, publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	prefix := URLPrefix + bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(u.Path, prefix)
	if key == "" {
		return "", ErrInvalidKey
	}
	return key, nil
}

func objectPath(bucket, key string) (string, error) {
	if !buckets[bucket] {
		return "", fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return path.Join("/", bucket, path.Clean(key)), nil
}
