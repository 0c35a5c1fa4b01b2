package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"buzztub/internal/ids"
	"buzztub/internal/media/sniffer"
	"buzztub/internal/media/svg"
)

var (
	ErrMissingFile     = errors.New("no file was uploaded")
	ErrBadExtension    = errors.New("file extension is not allowed")
	ErrContentMismatch = errors.New("file content does not match its extension")
	ErrFileTooLarge    = errors.New("file is too large")
)

// ObjectWriter is the blob backend uploads are written to.
type ObjectWriter interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// Category groups an allowed extension set with the key prefix its files are
// stored under.
type Category struct {
	Prefix     string
	Kind       sniffer.Kind
	Extensions []string
}

type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type Uploads struct {
	store    ObjectWriter
	maxBytes int64
	now      func() time.Time
}

func NewUploads(store ObjectWriter, maxBytes int64) *Uploads {
	return &Uploads{store: store, maxBytes: maxBytes, now: time.Now}
}

// Save validates the upload against the category and writes it under a fresh
// key of the form <prefix>/<yyyy/mm/dd>/<ksuid>.<ext>. The stored key is
// returned.
func (u *Uploads) Save(ctx context.Context, cat Category, up Upload) (string, error) {
	if up.Body == nil || up.Filename == "" {
		return "", ErrMissingFile
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Filename), "."))
	if ext == "" || !slices.Contains(cat.Extensions, ext) {
		return "", fmt.Errorf("%w: .%s", ErrBadExtension, ext)
	}
	if u.maxBytes > 0 && up.Size > u.maxBytes {
		return "", ErrFileTooLarge
	}

	result, head, err := sniffer.Detect(up.Body)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) {
			return "", ErrContentMismatch
		}
		return "", fmt.Errorf("read upload: %w", err)
	}
	if result.Kind != cat.Kind || !slices.Contains(result.Extensions(), ext) {
		return "", ErrContentMismatch
	}

	body := io.MultiReader(bytes.NewReader(head), up.Body)
	size := up.Size
	if result.Type == sniffer.TypeSVG {
		raw, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		clean, err := svg.Sanitize(raw)
		if err != nil {
			return "", ErrContentMismatch
		}
		body = bytes.NewReader(clean)
		size = int64(len(clean))
	}

	key := u.buildObjectKey(cat.Prefix, ext)
	if err := u.store.Put(ctx, key, body, size, result.MIME); err != nil {
		return "", err
	}
	return key, nil
}

func (u *Uploads) Remove(ctx context.Context, key string) error {
	return u.store.Remove(ctx, key)
}

func (u *Uploads) buildObjectKey(prefix string, ext string) string {
	datePrefix := u.now().UTC().Format("2006/01/02")
	return path.Join(prefix, datePrefix, fmt.Sprintf("%s.%s", ids.New(), ext))
}
