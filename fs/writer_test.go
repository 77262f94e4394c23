package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/elemsel"
	"github.com/fwojciec/elemsel/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "simple path", url: "https://example.com/docs/api/users", want: "docs/api/users.txt"},
		{name: "trailing slash becomes index", url: "https://example.com/docs/", want: "docs/index.txt"},
		{name: "root path becomes index", url: "https://example.com/", want: "index.txt"},
		{name: "root without trailing slash", url: "https://example.com", want: "index.txt"},
		{name: "ignores query and fragment", url: "https://example.com/docs/api?v=2#s", want: "docs/api.txt"},
		{name: "dot segments stay inside output", url: "https://example.com/../../etc/passwd", want: "etc/passwd.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDocument(t *testing.T) {
	t.Parallel()

	doc := &elemsel.Document{
		URL:         "https://example.com/docs/api",
		Title:       "API: Reference",
		Text:        "This is the API documentation.",
		ContentHash: "00000000000000ff",
		FetchedAt:   time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		Metadata:    map[string][]byte{"extracted": []byte("API only")},
	}
	ix := &elemsel.Indexer{StorageField: "extracted"}

	got, err := fs.FormatDocument(doc, ix.Index(doc))

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "---\n"))

	header, body, found := strings.Cut(strings.TrimPrefix(got, "---\n"), "---\n\n")
	require.True(t, found)
	assert.Equal(t, "This is the API documentation.", body)

	var fm struct {
		Source  string            `yaml:"source"`
		Title   string            `yaml:"title"`
		Crawled string            `yaml:"crawled"`
		Hash    string            `yaml:"hash"`
		Fields  map[string]string `yaml:"fields"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(header), &fm))
	assert.Equal(t, "https://example.com/docs/api", fm.Source)
	assert.Equal(t, "API: Reference", fm.Title)
	assert.Equal(t, "2025-01-08", fm.Crawled)
	assert.Equal(t, "00000000000000ff", fm.Hash)
	assert.Equal(t, map[string]string{"extracted": "API only"}, fm.Fields)
}

func TestWriter_CreateDocument(t *testing.T) {
	t.Parallel()

	t.Run("stages documents until commit", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out")
		w := fs.NewWriter(out, nil)

		err := w.CreateDocument(context.Background(), &elemsel.Document{
			URL:       "https://example.com/docs/api/users",
			Title:     "Users API",
			Text:      "Manage users.",
			FetchedAt: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(out, "docs/api/users.txt"))
		assert.True(t, os.IsNotExist(err))

		require.NoError(t, w.Commit())

		content, err := os.ReadFile(filepath.Join(out, "docs/api/users.txt"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "source: https://example.com/docs/api/users\n")
		assert.Contains(t, string(content), "---\n\nManage users.")
	})

	t.Run("commit replaces previous output", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out")
		require.NoError(t, os.MkdirAll(out, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(out, "stale.txt"), []byte("old"), 0o644))

		w := fs.NewWriter(out, nil)
		require.NoError(t, w.CreateDocument(context.Background(), &elemsel.Document{URL: "https://example.com/"}))
		require.NoError(t, w.Commit())

		_, err := os.Stat(filepath.Join(out, "stale.txt"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(out, "index.txt"))
		require.NoError(t, err)
	})

	t.Run("abort keeps previous output", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out")
		require.NoError(t, os.MkdirAll(out, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(out, "kept.txt"), []byte("old"), 0o644))

		w := fs.NewWriter(out, nil)
		require.NoError(t, w.CreateDocument(context.Background(), &elemsel.Document{URL: "https://example.com/new"}))
		require.NoError(t, w.Abort())

		_, err := os.Stat(filepath.Join(out, "kept.txt"))
		require.NoError(t, err)
		_, err = os.Stat(out + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("commit without documents is a no-op", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out")
		w := fs.NewWriter(out, nil)

		require.NoError(t, w.Commit())

		_, err := os.Stat(out)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sets fetched time when zero", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(filepath.Join(t.TempDir(), "out"), nil)
		doc := &elemsel.Document{URL: "https://example.com/a"}

		require.NoError(t, w.CreateDocument(context.Background(), doc))

		assert.False(t, doc.FetchedAt.IsZero())
	})

	t.Run("validates document", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(filepath.Join(t.TempDir(), "out"), nil)

		err := w.CreateDocument(context.Background(), &elemsel.Document{Title: "no url"})

		require.Error(t, err)
		assert.Equal(t, elemsel.EINVALID, elemsel.ErrorCode(err))
	})
}
