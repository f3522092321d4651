package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"sutrasync/internal/contentapi"
)

// mp3Header is enough of an ID3 tag for anything that sniffs the upload.
var mp3Header = []byte("ID3\x04\x00\x00\x00\x00\x00\x00")

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteAudio places a small recording for a sutra in the layout the
// publisher expects below audioDir and returns its path.
func WriteAudio(t testing.TB, audioDir, upanishad string, chapter, number int, mode contentapi.AudioMode, withChapter bool) string {
	t.Helper()

	dir := filepath.Join(audioDir, upanishad)
	if withChapter {
		dir = filepath.Join(dir, strconv.Itoa(chapter))
	}
	path := filepath.Join(dir, strconv.Itoa(number)+"_"+mode.Suffix()+".mp3")
	WriteFile(t, path, mp3Header)
	return path
}
