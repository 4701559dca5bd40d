package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileStore keeps one flat file per chat per provider kind: plain
// newline-separated tokens, the chat identifier as filename prefix.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) path(chatID int64, kind Kind) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d_%s.keys", chatID, kind))
}

func (s *FileStore) Get(chatID int64, kind Kind) ([]string, error) {
	data, err := os.ReadFile(s.path(chatID, kind))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}

	var keys []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			keys = append(keys, line)
		}
	}
	return keys, nil
}

func (s *FileStore) Put(chatID int64, kind Kind, keys []string) error {
	if len(keys) == 0 {
		return s.Delete(chatID, kind)
	}
	content := strings.Join(keys, "\n") + "\n"
	if err := os.WriteFile(s.path(chatID, kind), []byte(content), 0o600); err != nil {
		return fmt.Errorf("write keys: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(chatID int64, kind Kind) error {
	err := os.Remove(s.path(chatID, kind))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

func (s *FileStore) List(kind Kind) ([]int64, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*_"+string(kind)+".keys"))
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	var chats []int64
	suffix := fmt.Sprintf("_%s.keys", kind)
	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), suffix)
		chatID, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		chats = append(chats, chatID)
	}
	return chats, nil
}
