package storage

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte("%PDF-1.4 test content")
	written, err := store.SaveStream("doc.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), written)

	file, err := store.Open("doc.pdf")
	require.NoError(t, err)
	read, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, content, read)

	require.NoError(t, store.Delete("doc.pdf"))
	_, err = store.Open("doc.pdf")
	assert.Error(t, err)

	// Deleting a missing file is not an error.
	assert.NoError(t, store.Delete("doc.pdf"))
}
