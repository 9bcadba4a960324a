package subzip

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/klauspost/compress/zip"
	"github.com/ybirader/subzip/internal/testutils"
)

var assetEntries = []string{
	"assets/",
	"assets/lang/",
	"assets/lang/en.json",
	"assets/lang/fr.json",
	"assets/logo.png",
	"assets/readme.txt",
	"classes/Main.class",
}

type collector struct {
	mu        sync.Mutex
	resources []Resource
}

func (c *collector) handle(_ context.Context, r Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, r)
	return nil
}

func (c *collector) relativePaths() []string {
	paths := make([]string, 0, len(c.resources))
	for _, r := range c.resources {
		paths = append(paths, r.RelativePath)
	}
	sort.Strings(paths)
	return paths
}

func TestScan(t *testing.T) {
	t.Run("hands files directly inside the subdirectory to the handler", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		c := &collector{}

		s, err := NewScanner(c.handle)
		assert.NoError(t, err)

		err = s.Scan(context.Background(), FormatLocator(archivePath, "assets/"))
		assert.NoError(t, err)

		assert.Equal(t, []string{"logo.png", "readme.txt"}, c.relativePaths())
	})

	t.Run("descends into nested directories when recursive", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		c := &collector{}

		s, err := NewScanner(c.handle, ScannerRecursive(), ScannerConcurrency(2))
		assert.NoError(t, err)

		err = s.Scan(context.Background(), FormatLocator(archivePath, "assets/"))
		assert.NoError(t, err)

		assert.Equal(t, []string{"lang/en.json", "lang/fr.json", "logo.png", "readme.txt"}, c.relativePaths())
	})

	t.Run("includes directory entries when asked", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		c := &collector{}

		s, err := NewScanner(c.handle, ScannerIncludeDirs())
		assert.NoError(t, err)

		err = s.Scan(context.Background(), FormatLocator(archivePath, "assets/"))
		assert.NoError(t, err)

		assert.Equal(t, []string{"", "lang/", "logo.png", "readme.txt"}, c.relativePaths())
		for _, r := range c.resources {
			assert.Equal(t, r.RelativePath == "" || r.RelativePath == "lang/", r.Dir)
		}
	})

	t.Run("filters relative paths with patterns", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		c := &collector{}

		s, err := NewScanner(c.handle, ScannerRecursive(), ScannerPatterns("**/*.json", "*.txt"))
		assert.NoError(t, err)

		err = s.Scan(context.Background(), FormatLocator(archivePath, "assets/"))
		assert.NoError(t, err)

		assert.Equal(t, []string{"lang/en.json", "lang/fr.json", "readme.txt"}, c.relativePaths())
	})

	t.Run("opens resource content", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		var mu sync.Mutex
		contents := map[string]string{}

		s, err := NewScanner(func(_ context.Context, r Resource) error {
			rc, err := r.Open()
			if err != nil {
				return err
			}
			defer rc.Close()

			b, err := io.ReadAll(rc)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			contents[r.Name] = string(b)
			return nil
		})
		assert.NoError(t, err)

		err = s.Scan(context.Background(), FormatLocator(archivePath, "assets/"))
		assert.NoError(t, err)

		assert.Equal(t, map[string]string{
			"assets/logo.png":   "hello from assets/logo.png",
			"assets/readme.txt": "hello from assets/readme.txt",
		}, contents)
	})

	t.Run("returns the handler error", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		errBoom := errors.New("boom")

		s, err := NewScanner(func(context.Context, Resource) error { return errBoom }, ScannerConcurrency(1))
		assert.NoError(t, err)

		err = s.Scan(context.Background(), FormatLocator(archivePath, "assets/"))
		assert.True(t, errors.Is(err, errBoom))
	})

	t.Run("reports corrupted content", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		testutils.CorruptArchive(t, archivePath, "hello from assets/readme.txt")

		s, err := NewScanner(func(_ context.Context, r Resource) error {
			rc, err := r.Open()
			if err != nil {
				return err
			}
			defer rc.Close()

			_, err = io.Copy(io.Discard, rc)
			return err
		})
		assert.NoError(t, err)

		err = s.Scan(context.Background(), FormatLocator(archivePath, "assets/"))
		assert.True(t, errors.Is(err, zip.ErrChecksum))
	})

	t.Run("returns locator errors", func(t *testing.T) {
		c := &collector{}
		s, err := NewScanner(c.handle)
		assert.NoError(t, err)

		err = s.Scan(context.Background(), "http://example.com/app.jar")
		assert.True(t, errors.Is(err, ErrInvalidLocator))

		err = s.Scan(context.Background(), FormatLocator(filepath.Join(t.TempDir(), "missing.jar"), ""))
		assert.True(t, errors.Is(err, ErrArchiveOpen))
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		archivePath := testutils.CreateTempArchive(t, "app.jar", testutils.Entries(assetEntries...))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := &collector{}
		s, err := NewScanner(c.handle, ScannerRecursive())
		assert.NoError(t, err)

		err = s.Scan(ctx, FormatLocator(archivePath, "assets/"))
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 0, len(c.resources))
	})
}

func TestScannerOptions(t *testing.T) {
	handler := func(context.Context, Resource) error { return nil }

	t.Run("rejects concurrency below one", func(t *testing.T) {
		_, err := NewScanner(handler, ScannerConcurrency(0))
		assert.True(t, errors.Is(err, ErrMinConcurrency))
	})

	t.Run("rejects invalid patterns", func(t *testing.T) {
		_, err := NewScanner(handler, ScannerPatterns("[a-"))
		assert.True(t, errors.Is(err, ErrInvalidPattern))
	})

	t.Run("rejects a nil logger", func(t *testing.T) {
		_, err := NewScanner(handler, ScannerLogger(nil))
		assert.Error(t, err)
	})
}
