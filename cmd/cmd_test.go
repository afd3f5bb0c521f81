package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/shelfscan/internal/config"
	"github.com/lehigh-university-libraries/shelfscan/internal/export"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{provider: "openlibrary", wantName: "openlibrary"},
		{provider: "googlebooks", wantName: "googlebooks"},
		{provider: "worldcat", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := newProvider(context.Background(), &config.Config{Provider: tt.provider, UserAgent: "test"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.HEIC", "notes.txt", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	single := filepath.Join(dir, "a.jpg")

	files, err := expandInputs([]string{dir, single, filepath.Join(dir, "notes.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.HEIC"),
		filepath.Join(dir, "c.png"),
		single,
	}, files)

	_, err = expandInputs([]string{filepath.Join(dir, "missing.jpg")})
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	records := []models.BookRecord{
		models.NewBookRecord("9780441013593", "Dune", []string{"Frank Herbert"}, []string{"Science fiction"}),
		models.NewBookRecord("9780000000002", "", nil, nil),
	}

	dir := t.TempDir()
	for _, format := range []export.Format{export.FormatCSV, export.FormatParquet} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, format.Filename())
			f, err := os.Create(path)
			require.NoError(t, err)
			require.NoError(t, export.Write(f, format, records))
			require.NoError(t, f.Close())

			root := NewRootCmd()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"inspect", path})
			require.NoError(t, root.ExecuteContext(context.Background()))

			assert.Contains(t, out.String(), "Frank Herbert")
			assert.Contains(t, out.String(), "Unknown")
			assert.Contains(t, out.String(), "2 of 2 books")
		})
	}

	t.Run("rejects yaml", func(t *testing.T) {
		path := filepath.Join(dir, "library.yaml")
		require.NoError(t, os.WriteFile(path, []byte("books: []\n"), 0o644))
		_, err := readExport(path)
		assert.Error(t, err)
	})
}

type closeErrWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (w *closeErrWriter) Close() error {
	w.closed = true
	return w.closeErr
}

func TestWriteAndClose(t *testing.T) {
	records := []models.BookRecord{
		models.NewBookRecord("9780441013593", "Dune", []string{"Frank Herbert"}, nil),
	}

	t.Run("writes and closes", func(t *testing.T) {
		w := &closeErrWriter{}
		require.NoError(t, writeAndClose(w, export.FormatCSV, records))
		assert.True(t, w.closed)
		assert.Contains(t, w.String(), "9780441013593,Dune,Frank Herbert,Unknown")
	})

	t.Run("close failure is returned", func(t *testing.T) {
		diskFull := errors.New("no space left on device")
		w := &closeErrWriter{closeErr: diskFull}
		err := writeAndClose(w, export.FormatParquet, records)
		assert.ErrorIs(t, err, diskFull)
	})

	t.Run("output file is complete", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "library.parquet")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, writeAndClose(f, export.FormatParquet, records))

		got, err := readExport(path)
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})
}
