package testutils

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/klauspost/compress/zip"
)

// Entry is a fixture entry. Names ending in "/" are written as directory entries.
type Entry struct {
	Name string
	Body string
}

// Entries returns fixture entries for names, giving each file a small body.
func Entries(names ...string) []Entry {
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		e := Entry{Name: name}
		if !strings.HasSuffix(name, "/") {
			e.Body = "hello from " + name
		}
		entries = append(entries, e)
	}
	return entries
}

// CreateTempArchive writes entries, in order, to a new zip archive named name inside a
// temporary directory and returns the absolute path of the archive.
func CreateTempArchive(t testing.TB, name string, entries []Entry) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), name)
	archive, err := os.Create(archivePath)
	assert.NoError(t, err, fmt.Sprintf("could not create archive %s: %v", archivePath, err))
	defer archive.Close()

	w := zip.NewWriter(archive)
	for _, e := range entries {
		// stored, not deflated, so CorruptArchive can find the body
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Store})
		assert.NoError(t, err, fmt.Sprintf("could not add %s to archive", e.Name))

		if e.Body != "" {
			_, err = fw.Write([]byte(e.Body))
			assert.NoError(t, err)
		}
	}
	assert.NoError(t, w.Close())

	return archivePath
}

// CorruptArchive flips bytes inside the data of the first file entry of the archive at
// path, leaving the central directory intact so the archive still opens.
func CorruptArchive(t testing.TB, path string, body string) {
	t.Helper()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	i := bytes.Index(data, []byte(body))
	if i < 0 {
		t.Fatalf("could not find %q in archive %s", body, path)
	}
	for j := i; j < i+len(body); j++ {
		data[j] ^= 0xff
	}

	assert.NoError(t, os.WriteFile(path, data, 0644))
}

// GetOutput runs cmd and returns its combined stdout and stderr.
func GetOutput(t testing.TB, cmd *exec.Cmd) string {
	t.Helper()

	out, _ := cmd.CombinedOutput()
	return string(out)
}
