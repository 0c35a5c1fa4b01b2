package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buzztub/internal/media/sniffer"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if m.failPut != nil {
		return m.failPut
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

var videos = Category{Prefix: "videos", Kind: sniffer.KindVideo, Extensions: []string{"mp4", "webm"}}
var attachments = Category{Prefix: "chat", Kind: sniffer.KindImage, Extensions: []string{"png", "svg"}}

func mp4Bytes() []byte {
	return append([]byte{0, 0, 0, 0x18}, []byte("ftypmp42\x00\x00\x00\x00mp42isom-payload")...)
}

func TestUploads_SaveStoresUnderDatedKey(t *testing.T) {
	store := newMemoryStore()
	uploads := NewUploads(store, 0)
	uploads.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }

	data := mp4Bytes()
	key, err := uploads.Save(context.Background(), videos, Upload{Filename: "Cat.MP4", Size: int64(len(data)), Body: bytes.NewReader(data)})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "videos/2026/03/04/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))
	assert.Equal(t, data, store.objects[key])
	assert.Equal(t, "video/mp4", store.types[key])
}

func TestUploads_KeysDoNotCollide(t *testing.T) {
	store := newMemoryStore()
	uploads := NewUploads(store, 0)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		data := mp4Bytes()
		key, err := uploads.Save(context.Background(), videos, Upload{Filename: "same.mp4", Size: int64(len(data)), Body: bytes.NewReader(data)})
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestUploads_Rejections(t *testing.T) {
	uploads := NewUploads(newMemoryStore(), 1024)
	ctx := context.Background()

	_, err := uploads.Save(ctx, videos, Upload{})
	assert.ErrorIs(t, err, ErrMissingFile)

	_, err = uploads.Save(ctx, videos, Upload{Filename: "run.exe", Body: strings.NewReader("MZ")})
	assert.ErrorIs(t, err, ErrBadExtension)

	_, err = uploads.Save(ctx, videos, Upload{Filename: "noext", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrBadExtension)

	_, err = uploads.Save(ctx, videos, Upload{Filename: "fake.mp4", Body: strings.NewReader("not a video")})
	assert.ErrorIs(t, err, ErrContentMismatch)

	_, err = uploads.Save(ctx, videos, Upload{Filename: "big.mp4", Size: 4096, Body: bytes.NewReader(mp4Bytes())})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = uploads.Save(ctx, videos, Upload{Filename: "empty.mp4", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrContentMismatch)
}

func TestUploads_ImageUnderVideoExtensionRejected(t *testing.T) {
	uploads := NewUploads(newMemoryStore(), 0)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}

	_, err := uploads.Save(context.Background(), videos, Upload{Filename: "clip.webm", Body: bytes.NewReader(png)})
	assert.ErrorIs(t, err, ErrContentMismatch)
}

func TestUploads_SVGIsSanitized(t *testing.T) {
	store := newMemoryStore()
	uploads := NewUploads(store, 0)
	raw := []byte(`<svg onload="steal()"><script>steal()</script><rect/></svg>`)

	key, err := uploads.Save(context.Background(), attachments, Upload{Filename: "pic.svg", Size: int64(len(raw)), Body: bytes.NewReader(raw)})
	require.NoError(t, err)
	assert.NotContains(t, string(store.objects[key]), "steal")
}

func TestUploads_StoreFailurePropagates(t *testing.T) {
	store := newMemoryStore()
	store.failPut = errors.New("bucket unavailable")
	uploads := NewUploads(store, 0)

	data := mp4Bytes()
	_, err := uploads.Save(context.Background(), videos, Upload{Filename: "a.mp4", Size: int64(len(data)), Body: bytes.NewReader(data)})
	assert.ErrorIs(t, err, store.failPut)
}
