package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetisyanz/dreambot/internal/logger"
)

func TestStoragePathIsChatScoped(t *testing.T) {
	s := NewStorage("/tmp/x", logger.NewTestLogger())

	assert.Equal(t, filepath.Join("/tmp/x", "42_image.webp"), s.Path(42, "image.webp"))
	assert.NotEqual(t, s.Path(1, "video.mp4"), s.Path(2, "video.mp4"))
}

func TestStorageWriteAndRemove(t *testing.T) {
	s := NewStorage(t.TempDir(), logger.NewTestLogger())

	path, err := s.Write(7, "audio.mp3", []byte("mp3data"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3data"), data)

	s.Remove(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStorageRemoveMissingFileIsQuiet(t *testing.T) {
	l := logger.NewTestLogger()
	s := NewStorage(t.TempDir(), l)

	s.Remove(filepath.Join(t.TempDir(), "never-existed"))
	s.Remove("")

	assert.Empty(t, l.GetEntries())
}

func TestStorageWriteDoc(t *testing.T) {
	s := NewStorage(t.TempDir(), logger.NewTestLogger())

	path, dir, err := s.WriteDoc(9, "report.html", []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	s.RemoveAll(dir)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
