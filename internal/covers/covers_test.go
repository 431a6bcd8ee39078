package covers

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1899nils/Spherix-sub000/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: slog.LevelError, Writer: os.Stderr})
}

// testPNG encodes a small solid-color PNG.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 80, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// testJPEGHeader builds the minimal byte prefix the dimension parser
// scans: SOI, an APP0 segment, then a baseline SOF0 frame header.
func testJPEGHeader(width, height int) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8}) // SOI

	buf.Write([]byte{0xFF, 0xE0, 0x00, 0x04, 0x4A, 0x46}) // APP0, length 4

	buf.Write([]byte{0xFF, 0xC0, 0x00, 0x11, 0x08}) // SOF0, length, precision
	var dims [4]byte
	binary.BigEndian.PutUint16(dims[0:2], uint16(height))
	binary.BigEndian.PutUint16(dims[2:4], uint16(width))
	buf.Write(dims[:])
	buf.Write(make([]byte, 16)) // component data, padding past the minimum size

	return buf.Bytes()
}

func TestParseJPEGDimensions(t *testing.T) {
	w, h, err := parseImageDimensions(testJPEGHeader(1200, 800))
	require.NoError(t, err)
	assert.Equal(t, 1200, w)
	assert.Equal(t, 800, h)
}

func TestParsePNGDimensions(t *testing.T) {
	w, h, err := parseImageDimensions(testPNG(t, 64, 48))
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
}

func TestParseImageDimensionsRejectsGarbage(t *testing.T) {
	_, _, err := parseImageDimensions(bytes.Repeat([]byte{0xAB}, 64))
	assert.Error(t, err)

	_, _, err = parseImageDimensions([]byte{0x00})
	assert.Error(t, err)
}

func TestStorageRoundTrip(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	data := []byte("fake image bytes")
	require.NoError(t, s.Save("alb_1", data))

	assert.True(t, s.Exists("alb_1"))
	assert.False(t, s.Exists("alb_2"))

	got, err := s.Get("alb_1")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	hash1, err := s.Hash("alb_1")
	require.NoError(t, err)
	assert.Len(t, hash1, 64)

	require.NoError(t, s.Delete("alb_1"))
	assert.False(t, s.Exists("alb_1"))

	// Deleting twice is fine.
	require.NoError(t, s.Delete("alb_1"))

	_, err = s.Get("alb_1")
	assert.Error(t, err)
}

func TestStoragePathLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "alb_1.jpg"), s.Path("alb_1"))
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(testPNG(t, 32, 32))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = ComputeBlurHash([]byte("not an image"))
	assert.Error(t, err)
}

func TestDownloadStoresCover(t *testing.T) {
	img := testPNG(t, 40, 30)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(img)
	}))
	defer srv.Close()

	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	d := NewDownloader(storage, testLogger())

	res := d.Download(context.Background(), "alb_1", srv.URL)
	require.NoError(t, res.Error)
	assert.True(t, res.Success)
	assert.Equal(t, int64(len(img)), res.Size)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 30, res.Height)
	assert.NotEmpty(t, res.BlurHash)
	assert.True(t, storage.Exists("alb_1"))
}

func TestDownloadFailures(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	d := NewDownloader(storage, testLogger())

	res := d.Download(context.Background(), "alb_1", "")
	assert.False(t, res.Success)
	assert.Error(t, res.Error)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res = d.Download(context.Background(), "alb_1", srv.URL)
	assert.False(t, res.Success)
	assert.Error(t, res.Error)
	assert.False(t, storage.Exists("alb_1"))
}
