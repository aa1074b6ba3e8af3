package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveAndRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	relPath, err := store.Save("req-1", "sample", "f1_trades.csv", strings.NewReader("id,amount\n1,100\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, relPath)

	data, err := store.ReadAll(relPath)
	require.NoError(t, err)
	assert.Equal(t, "id,amount\n1,100\n", string(data))

	reader, err := store.Open(relPath)
	require.NoError(t, err)
	defer reader.Close()

	streamed, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, streamed)
}

func TestFileStoreDistinctVersionsKeepDistinctPaths(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save("req-1", "bucket", "f1_data.csv", strings.NewReader("v1"))
	require.NoError(t, err)
	second, err := store.Save("req-1", "bucket", "f2_data.csv", strings.NewReader("v2"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	old, err := store.ReadAll(first)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(old))
}

func TestFileStoreRequiresBaseDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestFileStoreOpenMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("req-x/sample/missing.csv")
	assert.Error(t, err)
}
