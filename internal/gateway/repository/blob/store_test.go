package blob

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"contracthub/internal/cache/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, root, "0")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	require.NoError(t, s.Put(ctx, root, "", []byte(`{"name":"root"}`)))
	require.NoError(t, s.Put(ctx, root, "/0/", []byte(`{"name":"zero"}`)))
	require.NoError(t, s.Put(ctx, "QmOther", "0", []byte("other")))

	got, err := s.Get(ctx, root, "0")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"zero"}`, string(got))

	got, err = s.Get(ctx, root, "")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"root"}`, string(got))

	require.NoError(t, s.Put(ctx, root, "0", []byte(`{"name":"zero2"}`)))
	got, err = s.Get(ctx, root, "0")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"zero2"}`, string(got))

	paths, err := s.List(ctx, root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"", "0"}, paths)

	require.Error(t, s.Put(ctx, " ", "x", []byte("x")))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLStore(DialectSQLite, filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestDiskStore(t *testing.T) {
	s, err := NewDiskStore(disk.Config{Root: t.TempDir(), MaxEntries: 64, TTL: time.Hour})
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestOpenSQLStoreRejectsUnknownDialect(t *testing.T) {
	_, err := OpenSQLStore(Dialect("mysql"), "dsn")
	assert.Error(t, err)
	_, err = OpenSQLStore(DialectSQLite, " ")
	assert.Error(t, err)
}

func TestSQLitePlaceholderRewrite(t *testing.T) {
	s := NewSQLStore(nil, DialectSQLite)
	assert.Equal(t, "a=? AND b=?", s.q("a=$1 AND b=$2"))
	pg := NewSQLStore(nil, DialectPostgres)
	assert.Equal(t, "a=$1", pg.q("a=$1"))
}
