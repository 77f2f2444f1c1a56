package catalog

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestCatalogFile writes content to a gzipped file in a temp dir.
func createTestCatalogFile(t *testing.T, filename, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	_, err = gzipWriter.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())

	return filePath
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	filePath := createTestCatalogFile(t, "catalog.csv.gz", header+
		"GX-S24,Samsung,Galaxy S24,Black,256GB,8GB,999,700,12,ACTIVE,,\n"+
		"BAD,Samsung,Galaxy S24,Black,256GB,8GB,nope,700,12,ACTIVE,,\n")

	cat, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, cat.Phones, 1)
	assert.Equal(t, "GX-S24", cat.Phones[0].Code)
	assert.Len(t, cat.Rejected, 1)
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	cat, err := loader.Load(context.Background(), "/nonexistent/path/catalog.csv.gz")

	require.Error(t, err)
	assert.Nil(t, cat)
	assert.Contains(t, err.Error(), "failed to open catalogue file")
}

func TestFileLoader_Load_NotGzipped(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	filePath := filepath.Join(t.TempDir(), "plain.csv")
	require.NoError(t, os.WriteFile(filePath, []byte(header), 0o644))

	cat, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, cat)
	assert.Contains(t, err.Error(), "gzip")
}
