package fab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutThenFabContentRoundTrips(t *testing.T) {
	d, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	hash, err := d.Put([]byte("hello fab"))
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	content, ok, err := d.FabContent(context.Background(), hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello fab"), content)
}

func TestPutIsIdempotent(t *testing.T) {
	d, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	hash1, err := d.Put([]byte("same content"))
	require.NoError(t, err)
	hash2, err := d.Put([]byte("same content"))
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)
}

func TestFabContentMissingHashReturnsNotFound(t *testing.T) {
	d, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	content, ok, err := d.FabContent(context.Background(), "does-not-exist")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, content)
}
