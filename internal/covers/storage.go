// Package covers stores album cover art on disk and derives display
// metadata (dimensions, BlurHash placeholders) from the image bytes.
package covers

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages cover files under a single directory, one file per album.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage rooted at dir, creating it if needed.
// Covers are stored as {dir}/{albumID}.jpg.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("covers directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}

	return &Storage{basePath: dir}, nil
}

// Save stores cover image data for an album.
func (s *Storage) Save(albumID string, data []byte) error {
	if albumID == "" {
		return fmt.Errorf("album ID cannot be empty")
	}
	if len(data) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(albumID), data, 0644); err != nil {
		return fmt.Errorf("failed to write cover file: %w", err)
	}

	return nil
}

// Get retrieves cover image data for an album.
func (s *Storage) Get(albumID string) ([]byte, error) {
	if albumID == "" {
		return nil, fmt.Errorf("album ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(albumID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cover not found for %s: %w", albumID, err)
		}
		return nil, fmt.Errorf("failed to read cover file: %w", err)
	}

	return data, nil
}

// Exists reports whether a cover is stored for an album.
func (s *Storage) Exists(albumID string) bool {
	if albumID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(albumID))
	return err == nil
}

// Delete removes a stored cover. Missing files are not an error.
func (s *Storage) Delete(albumID string) error {
	if albumID == "" {
		return fmt.Errorf("album ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(albumID)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete cover file: %w", err)
	}

	return nil
}

// Hash computes the SHA256 of a stored cover, hex-encoded for ETag use.
func (s *Storage) Hash(albumID string) (string, error) {
	data, err := s.Get(albumID)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

// Path returns the filesystem path for an album's cover.
func (s *Storage) Path(albumID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.jpg", albumID))
}
