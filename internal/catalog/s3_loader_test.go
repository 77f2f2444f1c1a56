package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"testing"

	"phonestore/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves gzipped objects from memory.
type fakeS3 struct {
	objects map[string]string
	keys    []string
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	f.keys = append(f.keys, aws.ToString(params.Bucket)+"/"+key)

	content, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(content)); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(&buf)}, nil
}

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	catalog *Catalog
	err     error
	paths   []string
}

func (m *mockLoader) Load(_ context.Context, path string) (*Catalog, error) {
	m.paths = append(m.paths, path)
	return m.catalog, m.err
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"catalog/catalog.csv.gz": header + "GX-S24,Samsung,Galaxy S24,Black,256GB,8GB,999,700,12,ACTIVE,,\n",
	}}
	loader := NewS3LoaderWithClient(client, "phones-bucket", zerolog.Nop())

	cat, err := loader.Load(context.Background(), "catalog/catalog.csv.gz")

	require.NoError(t, err)
	require.Len(t, cat.Phones, 1)
	assert.Equal(t, []string{"phones-bucket/catalog/catalog.csv.gz"}, client.keys)
}

func TestS3Loader_Load_MissingObject(t *testing.T) {
	loader := NewS3LoaderWithClient(&fakeS3{}, "phones-bucket", zerolog.Nop())

	cat, err := loader.Load(context.Background(), "catalog/missing.csv.gz")

	require.Error(t, err)
	assert.Nil(t, cat)
	assert.Contains(t, err.Error(), "bucket=phones-bucket")
}

func TestFallbackLoader(t *testing.T) {
	fromS3 := &Catalog{Phones: []model.Phone{{Code: "FROM-S3"}}}
	fromDisk := &Catalog{Phones: []model.Phone{{Code: "FROM-DISK"}}}

	t.Run("S3 success", func(t *testing.T) {
		s3Loader := &mockLoader{catalog: fromS3}
		fileLoader := &mockLoader{catalog: fromDisk}
		loader := NewFallbackLoader(s3Loader, fileLoader, "catalog/", zerolog.Nop())

		cat, err := loader.Load(context.Background(), "data/catalog.csv.gz")

		require.NoError(t, err)
		assert.Equal(t, "FROM-S3", cat.Phones[0].Code)
		assert.Equal(t, []string{"catalog/data/catalog.csv.gz"}, s3Loader.paths)
		assert.Empty(t, fileLoader.paths)
	})

	t.Run("S3 fails", func(t *testing.T) {
		s3Loader := &mockLoader{err: errors.New("access denied")}
		fileLoader := &mockLoader{catalog: fromDisk}
		loader := NewFallbackLoader(s3Loader, fileLoader, "catalog/", zerolog.Nop())

		cat, err := loader.Load(context.Background(), "data/catalog.csv.gz")

		require.NoError(t, err)
		assert.Equal(t, "FROM-DISK", cat.Phones[0].Code)
		assert.Equal(t, []string{"data/catalog.csv.gz"}, fileLoader.paths)
	})

	t.Run("No S3 loader", func(t *testing.T) {
		fileLoader := &mockLoader{catalog: fromDisk}
		loader := NewFallbackLoader(nil, fileLoader, "catalog/", zerolog.Nop())

		cat, err := loader.Load(context.Background(), "data/catalog.csv.gz")

		require.NoError(t, err)
		assert.Equal(t, "FROM-DISK", cat.Phones[0].Code)
	})

	t.Run("Both fail", func(t *testing.T) {
		loader := NewFallbackLoader(
			&mockLoader{err: errors.New("access denied")},
			&mockLoader{err: errors.New("no such file")},
			"catalog/", zerolog.Nop())

		cat, err := loader.Load(context.Background(), "data/catalog.csv.gz")

		require.Error(t, err)
		assert.Nil(t, cat)
		assert.Contains(t, err.Error(), "no such file")
	})
}
