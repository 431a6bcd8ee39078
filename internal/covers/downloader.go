package covers

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/1899nils/Spherix-sub000/internal/logger"
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// downloadTimeout is the maximum time for a cover download.
	downloadTimeout = 30 * time.Second
)

// DownloadResult describes the outcome of fetching and storing a cover.
type DownloadResult struct {
	Success  bool
	Width    int
	Height   int
	Size     int64
	BlurHash string
	Error    error
}

// Downloader fetches cover art over HTTP and persists it via Storage.
type Downloader struct {
	httpClient *http.Client
	storage    *Storage
	log        *logger.Logger
}

// NewDownloader creates a cover downloader backed by the given storage.
func NewDownloader(storage *Storage, log *logger.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: downloadTimeout},
		storage:    storage,
		log:        log,
	}
}

// Download fetches a cover from url and stores it for the given album ID.
// Dimension and BlurHash failures are non-fatal; the image is kept anyway.
func (d *Downloader) Download(ctx context.Context, albumID, url string) *DownloadResult {
	result := &DownloadResult{}

	if url == "" {
		result.Error = errors.New("empty cover URL")
		return result
	}

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Errorf("create request: %w", err)
		return result
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("download: %w", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Errorf("download failed: status %d", resp.StatusCode)
		return result
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		result.Error = fmt.Errorf("read data: %w", err)
		return result
	}

	result.Size = int64(len(data))

	width, height, err := parseImageDimensions(data)
	if err != nil {
		d.log.Warn("failed to parse cover dimensions",
			"album_id", albumID,
			"url", url,
			"error", err,
		)
	} else {
		result.Width = width
		result.Height = height
	}

	if hash, err := ComputeBlurHash(data); err != nil {
		d.log.Warn("failed to compute cover blurhash",
			"album_id", albumID,
			"error", err,
		)
	} else {
		result.BlurHash = hash
	}

	if err := d.storage.Save(albumID, data); err != nil {
		result.Error = fmt.Errorf("store: %w", err)
		return result
	}

	result.Success = true
	d.log.Info("downloaded cover",
		"album_id", albumID,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height,
	)

	return result
}

// parseImageDimensions extracts dimensions from image data.
// Supports JPEG and PNG formats.
func parseImageDimensions(data []byte) (width, height int, err error) {
	if len(data) < 24 {
		return 0, 0, errors.New("data too small")
	}

	if w, h, ok := parseJPEGDimensions(data); ok {
		return w, h, nil
	}
	if w, h, ok := parsePNGDimensions(data); ok {
		return w, h, nil
	}

	return 0, 0, errors.New("unsupported format")
}

// parseJPEGDimensions extracts dimensions from JPEG data.
func parseJPEGDimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, false // Not a JPEG
	}

	// Scan for SOF markers
	i := 2
	for i < len(data)-9 {
		if data[i] != 0xFF {
			i++
			continue
		}

		marker := data[i+1]

		// SOF0 (baseline), SOF1 (extended), SOF2 (progressive)
		if marker == 0xC0 || marker == 0xC1 || marker == 0xC2 {
			if i+9 > len(data) {
				return 0, 0, false
			}
			height = int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			width = int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return width, height, true
		}

		if i+3 >= len(data) {
			break
		}
		segmentLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		i += 2 + segmentLen
	}

	return 0, 0, false
}

// parsePNGDimensions extracts dimensions from PNG data.
func parsePNGDimensions(data []byte) (width, height int, ok bool) {
	pngSig := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if len(data) < 24 || !bytes.Equal(data[:8], pngSig) {
		return 0, 0, false
	}

	if string(data[12:16]) != "IHDR" {
		return 0, 0, false
	}

	width = int(binary.BigEndian.Uint32(data[16:20]))
	height = int(binary.BigEndian.Uint32(data[20:24]))
	return width, height, true
}
