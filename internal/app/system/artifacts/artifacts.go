// internal/app/system/artifacts/artifacts.go
package artifacts

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// BlobStore is the slice of the storage backend the artifact helpers
// need. Satisfied by waffle's storage.Store implementations.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
}

// UploadInfo contains metadata about a stored artifact.
type UploadInfo struct {
	Path        string
	FileName    string
	Size        int64
	ContentType string
}

// Upload stores a profile artifact with a unique path and returns upload info.
// The path is generated as: pictures|signatures/studentID_kind-uuid.png
func Upload(ctx context.Context, store BlobStore, kind approval.Kind, studentID, filename string, reader io.Reader, size int64) (UploadInfo, error) {
	dir := "pictures"
	if kind == approval.KindSignature {
		dir = "signatures"
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".png"
	}
	uniqueName := fmt.Sprintf("%s_%s-%s%s", sanitizeFilename(studentID), kind, uuid.New().String()[:8], ext)
	path := filepath.ToSlash(filepath.Join(dir, uniqueName))

	opts := &storage.PutOptions{
		ContentType: "image/png",
	}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return UploadInfo{}, fmt.Errorf("failed to upload artifact: %w", err)
	}

	return UploadInfo{
		Path:        path,
		FileName:    filename,
		Size:        size,
		ContentType: "image/png",
	}, nil
}

// Delete removes a stored artifact. Missing blobs are not an error here;
// callers treat cleanup as best effort.
func Delete(ctx context.Context, store BlobStore, path string) error {
	if path == "" {
		return nil
	}
	return store.Delete(ctx, path)
}

// PublicURL builds the URL a client uses to fetch a stored artifact.
func PublicURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// PathFromURL recovers the storage path from a public URL previously
// produced by PublicURL. Returns "" when the URL is not under baseURL.
func PathFromURL(baseURL, url string) string {
	base := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return ""
	}
	return strings.TrimPrefix(url, base)
}

// sanitizeFilename removes or replaces characters that could be problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
