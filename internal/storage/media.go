// Package storage provides the disk-backed media store behind /media.
// Uploads get an opaque generated name; the public URL is the base URL
// plus that name, so the store never leaks client-chosen paths.
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// MaxUploadSize caps a single media upload at 10 MB.
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".webm": true,
	".pdf":  true,
	".json": true,
}

// MediaStore writes uploads under dir and serves them at baseURL/media/.
type MediaStore struct {
	dir     string
	baseURL string
}

func NewMediaStore(dir, baseURL string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating media dir: %w", err)
	}
	return &MediaStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory uploads are written to, for the file server.
func (s *MediaStore) Dir() string { return s.dir }

// Save stores an upload and returns its public URL. Only the extension of
// the client filename is kept, and only when it is on the allow list.
func (s *MediaStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("storage: file type %q is not allowed", ext)
	}

	name := xid.New().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: creating media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: writing media file: %w", err)
	}
	if info, err := f.Stat(); err == nil && info.Size() > MaxUploadSize {
		os.Remove(path)
		return "", fmt.Errorf("storage: upload exceeds %d bytes", MaxUploadSize)
	}

	return s.URL(name), nil
}

// SaveJSON marshals v and stores it under a generated name. Used for the
// legacy asset metadata blobs.
func (s *MediaStore) SaveJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: encoding json blob: %w", err)
	}
	return s.Save("blob.json", strings.NewReader(string(data)))
}

// URL returns the public URL for a stored file name.
func (s *MediaStore) URL(name string) string {
	return s.baseURL + "/media/" + name
}
