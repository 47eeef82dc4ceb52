// Package storage keeps uploaded profile photos and hands out their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyImage    = errors.New("image is empty")
	ErrImageTooLarge = errors.New("image exceeds the 5 MiB limit")
	ErrNotAnImage    = errors.New("file is not an image")
	ErrImageNotFound = errors.New("image not found")
)

// unsafeName matches anything that would need escaping in the public URL.
var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// allowedTypes are raster formats only; SVG can carry script.
var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type ImageStore struct {
	fs        afero.Fs
	publicURL string
	maxBytes  int64
	now       func() time.Time
	log       *zap.Logger
}

// NewImageStore stores files at the root of fs; publicURL is the prefix under which they are served.
func NewImageStore(fs afero.Fs, publicURL string, maxBytes int64, log *zap.Logger) *ImageStore {
	return &ImageStore{
		fs:        fs,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
		now:       time.Now,
		log:       log.Named("storage"),
	}
}

// Save reads at most maxBytes from r, checks that it is an image and writes it under a
// timestamped name. It returns the public URL of the stored file.
func (s *ImageStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		s.log.Error("Failed to read upload", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if int64(len(data)) > s.maxBytes {
		s.log.Warn("Rejected oversized upload", zap.String("name", name))
		return "", ErrImageTooLarge
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), allowedTypes...) {
		s.log.Warn("Rejected non-image upload", zap.String("name", name), zap.String("mime", mime.String()))
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, mime.String())
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	fileName := s.fileName(name)
	if err := afero.WriteReader(s.fs, fileName, bytes.NewReader(data)); err != nil {
		s.log.Error("Failed to write image", zap.String("file", fileName), zap.Error(err))
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	s.log.Debug("Stored image", zap.String("file", fileName), zap.String("mime", mime.String()), zap.Int("bytes", len(data)))

	return s.publicURL + "/" + fileName, nil
}

// Open returns a stored file by name. Directory components are ignored.
func (s *ImageStore) Open(name string) (afero.File, error) {
	base := path.Base("/" + name)
	if base == "/" || base == "." {
		return nil, ErrImageNotFound
	}
	f, err := s.fs.Open(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, base)
	}
	return f, nil
}

func (s *ImageStore) fileName(name string) string {
	base := path.Base("/" + strings.ReplaceAll(name, "\\", "/"))
	if base == "/" || base == "." {
		base = "image"
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + unsafeName.ReplaceAllString(base, "_")
}
