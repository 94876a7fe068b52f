// Package storage keeps uploaded post images on an afero filesystem.
package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	_ "golang.org/x/image/webp" // register WebP decoder
)

var (
	// ErrUnsupportedType is returned for extensions outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrInvalidImage is returned when the content is not a decodable image.
	ErrInvalidImage = errors.New("file is not a valid image")
	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("image exceeds the upload size limit")
	// ErrInvalidName is returned for stored names that are not plain filenames.
	ErrInvalidName = errors.New("invalid stored filename")
)

var allowedExtensions = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

const (
	// maxCollisionRetries bounds how far Save bumps the timestamp.
	maxCollisionRetries = 1000
	// sniffSize covers JPEG headers that carry large EXIF segments.
	sniffSize = 128 << 10
)

// UploadStore writes uploads as <unix-millis><ext> under a directory.
type UploadStore struct {
	fs       afero.Fs
	dir      string
	maxBytes int64
	now      func() time.Time

	mu   sync.Mutex
	last int64
}

// NewUploadStore returns a store rooted at dir on fs.
func NewUploadStore(fs afero.Fs, dir string, maxBytes int64) (*UploadStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &UploadStore{fs: fs, dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// WithClock overrides the clock used for filenames.
func (s *UploadStore) WithClock(now func() time.Time) *UploadStore {
	s.now = now
	return s
}

// Dir is the directory uploads are written to.
func (s *UploadStore) Dir() string {
	return s.dir
}

// MaxBytes is the per-file size limit.
func (s *UploadStore) MaxBytes() int64 {
	return s.maxBytes
}

func allowedExtension(ext string) bool {
	_, ok := allowedExtensions[ext]
	return ok
}

// Save validates r as an image named originalName and writes it under a
// fresh timestamped name, which it returns.
func (s *UploadStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtension(ext) {
		return "", ErrUnsupportedType
	}

	br := bufio.NewReaderSize(r, sniffSize)
	if err := sniffImage(br); err != nil {
		return "", err
	}

	f, name, err := s.create(ext)
	if err != nil {
		return "", err
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	n, copyErr := io.Copy(f, io.LimitReader(br, limit+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = s.fs.Remove(path.Join(s.dir, name))
		return "", fmt.Errorf("write upload: %w", copyErr)
	case n > limit:
		_ = s.fs.Remove(path.Join(s.dir, name))
		return "", ErrTooLarge
	case closeErr != nil:
		_ = s.fs.Remove(path.Join(s.dir, name))
		return "", fmt.Errorf("close upload: %w", closeErr)
	}

	return name, nil
}

// sniffImage checks that the head of br decodes as a known image format
// without consuming it.
func sniffImage(br *bufio.Reader) error {
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return fmt.Errorf("read upload: %w", err)
	}
	if len(head) == 0 {
		return ErrInvalidImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(head)); err != nil {
		return ErrInvalidImage
	}
	return nil
}

// create opens a new file exclusively, bumping the millisecond timestamp
// until an unused name is found.
func (s *UploadStore) create(ext string) (afero.File, string, error) {
	s.mu.Lock()
	ts := s.now().UnixMilli()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	s.mu.Unlock()

	for i := 0; i < maxCollisionRetries; i++ {
		name := strconv.FormatInt(ts+int64(i), 10) + ext
		f, err := s.fs.OpenFile(path.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			s.mu.Lock()
			if ts+int64(i) > s.last {
				s.last = ts + int64(i)
			}
			s.mu.Unlock()
			return f, name, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("create upload: %w", err)
		}
	}
	return nil, "", fmt.Errorf("create upload: no free filename after %d attempts", maxCollisionRetries)
}

// Remove deletes a previously stored upload.
func (s *UploadStore) Remove(storedName string) error {
	if storedName == "" || storedName != filepath.Base(storedName) || strings.HasPrefix(storedName, ".") {
		return ErrInvalidName
	}
	if err := s.fs.Remove(path.Join(s.dir, storedName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
