package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileState(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "catalog with providers",
			filename: "catalog.json",
			data:     []byte(`{"providers":[{"provider":"Wolt","price_eur":12.5,"eta_minutes":25,"rating":4.5}]}`),
		},
		{
			name:     "empty catalog",
			filename: "empty.json",
			data:     []byte(`{"providers":[]}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.filename)
			require.NoError(t, os.WriteFile(filePath, tt.data, 0644))

			loaded, err := NewFileState(filePath).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.data, loaded)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileState(filepath.Join(tmpDir, "nope.json")).Load(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileState(filepath.Join(tmpDir, "catalog.json")).Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type fakeS3 struct {
	input *s3.GetObjectInput
	body  string
	err   error
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3State(t *testing.T) {
	t.Run("reads object", func(t *testing.T) {
		fake := &fakeS3{body: `{"providers":[]}`}
		data, err := NewS3State(fake, "bucket", "orders/catalog.json").Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"providers":[]}`, string(data))
		assert.Equal(t, "bucket", aws.ToString(fake.input.Bucket))
		assert.Equal(t, "orders/catalog.json", aws.ToString(fake.input.Key))
	})

	t.Run("wraps errors", func(t *testing.T) {
		boom := errors.New("access denied")
		_, err := NewS3State(&fakeS3{err: boom}, "bucket", "key").Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "s3://bucket/key")
	})
}

func TestMemoryState(t *testing.T) {
	data, err := NewMemoryState([]byte("x")).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)

	_, err = NewMemoryStateWithError().Load(context.Background())
	assert.Error(t, err)
}
