package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/avetisyanz/dreambot/internal/logger"
)

// Storage owns the locally written media artifacts. Every file is prefixed
// with the chat identifier so concurrent chats never collide on a path.
type Storage struct {
	dir    string
	logger logger.Logger
}

func NewStorage(dir string, log logger.Logger) *Storage {
	if dir == "" {
		dir = "."
	}
	return &Storage{
		dir:    dir,
		logger: log,
	}
}

func (s *Storage) Path(chatID int64, name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d_%s", chatID, name))
}

func (s *Storage) Write(chatID int64, name string, data []byte) (string, error) {
	path := s.Path(chatID, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteDoc places data in a per-chat subdirectory so the whole directory
// can be removed once the document has been sent.
func (s *Storage) WriteDoc(chatID int64, filename string, data []byte) (path string, dir string, err error) {
	dir = filepath.Join(s.dir, fmt.Sprintf("%d_document", chatID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path = filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, dir, nil
}

// Remove deletes a temporary artifact. Failures are logged, never
// propagated: cleanup must not mask the outcome of the operation that
// produced the file.
func (s *Storage) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).WithField("path", path).Warn("Failed to remove temp file")
	}
}

func (s *Storage) RemoveAll(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.WithError(err).WithField("path", dir).Warn("Failed to remove temp dir")
	}
}
