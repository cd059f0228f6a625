// Package storage persists recolor results and hands back a URL for them.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
)

// Store saves an object under key and returns a URL where it can be fetched.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// NewKey returns a fresh object key such as "visualizer/<32 hex>.jpg".
func NewKey(prefix, ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	ext = strings.TrimPrefix(ext, ".")
	return path.Join(prefix, id+"."+ext)
}

// LocalStore writes objects below Root on the local filesystem.
//
// When BaseURL is set, returned URLs are BaseURL joined with the key, for
// serving Root through a static file server. Otherwise a file:// URL is
// returned.
type LocalStore struct {
	Root    string
	BaseURL string
}

// NewLocalStore creates root (after "~" expansion) and returns a store on it.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	expanded, err := homedir.Expand(root)
	if err != nil {
		return nil, fmt.Errorf("expanding output dir %q: %w", root, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &LocalStore{Root: abs, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put writes r to Root/key. The content type is not recorded; the file
// extension in key carries it.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	dst := filepath.Join(s.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating object: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing object: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publishing object: %w", err)
	}

	if s.BaseURL != "" {
		return s.BaseURL + "/" + clean, nil
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(dst)}).String(), nil
}
