package customers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(context.Background(), filepath.Join(t.TempDir(), "customer_data.db"))
	require.NoError(t, err)
	return repo
}

func TestNewCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.db")

	repo, err := New(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, repo.Path())

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// Reopening an existing file keeps its rows
	require.NoError(t, repo.Add(context.Background(), "Alice", "a@x.com"))
	again, err := New(context.Background(), path)
	require.NoError(t, err)

	found, err := again.Find(context.Background(), "Alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a@x.com", found.Email)
}

func TestNewFailsOnUnusablePath(t *testing.T) {
	dir := t.TempDir()

	_, err := New(context.Background(), filepath.Join(dir, "missing", "dir", "customers.db"))
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestAddAndFind(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	found, err := repo.Find(ctx, "Bob")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repo.Add(ctx, "Bob", "b@x.com"))

	found, err = repo.Find(ctx, "Bob")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Bob", found.Name)
	assert.Equal(t, "b@x.com", found.Email)
	assert.NotZero(t, found.ID)

	// Exact match only
	found, err = repo.Find(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAddDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	require.NoError(t, repo.Add(ctx, "Alice", "a@x.com"))

	err := repo.Add(ctx, "Alice", "a@x.com")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	// A different address for the same name is a different customer
	require.NoError(t, repo.Add(ctx, "Alice", "alice@work.com"))

	found, err := repo.Find(ctx, "Alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a@x.com", found.Email, "find returns the earliest row")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
