// Package media stores uploaded files and hands back the opaque references
// that posts carry in their media URL lists.
package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Uploader stores media and returns an opaque reference.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, name string) (ref string, err error)
}

// DirUploader writes uploads to a local directory and returns content-hashed
// URLs under /media. Duplicate uploads of the same bytes share one file.
type DirUploader struct {
	dir string
}

func NewDirUploader(dir string) *DirUploader {
	return &DirUploader{dir: dir}
}

// Dir returns the backing directory, for static file serving.
func (u *DirUploader) Dir() string {
	return u.dir
}

func (u *DirUploader) Upload(ctx context.Context, r io.Reader, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("empty upload")
	}

	sum := sha256.Sum256(content)
	filename := hex.EncodeToString(sum[:]) + safeExt(name)

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}
	path := filepath.Join(u.dir, filename)
	if _, err := os.Stat(path); err == nil {
		return "/media/" + filename, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return "/media/" + filename, nil
}

// safeExt keeps a short, lowercase extension from the client filename and
// discards anything that could escape the upload directory.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if ext == "" || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
