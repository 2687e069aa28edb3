package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteBindsParameters(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "/img/1.png", nil, "aa11"))

	// A quoted payload is bound as a value and matches nothing.
	rows, err := s.Execute(ctx, "SELECT path FROM MEDIA WHERE hash = ?", "aa11' OR '1'='1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.Execute(ctx, "SELECT hash, path FROM MEDIA WHERE hash = ?", "aa11")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{"aa11", "/img/1.png"}, rows[0])
}

func TestExecuteWithIDReturnsRowID(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	rows, first, err := s.ExecuteWithID(ctx, "INSERT INTO CLASS(class) VALUES(?)", "cat")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotZero(t, first)

	_, second, err := s.ExecuteWithID(ctx, "INSERT INTO CLASS(class) VALUES(?)", "dog")
	require.NoError(t, err)
	assert.Equal(t, first+1, second)

	rows, err = s.Execute(ctx, "SELECT class FROM CLASS WHERE classID = ?", second)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "dog", rows[0][0])
}

func TestExecutePropagatesErrors(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Execute(ctx, "SELECT * FROM MISSING")
	assert.Error(t, err)

	_, _, err = s.ExecuteWithID(ctx, "INSERT INTO CLASS(class) VALUES(?)", nil)
	assert.Error(t, err)
}

func TestChunk(t *testing.T) {
	assert.Empty(t, chunk(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}}, chunk([]string{"a", "b"}, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunk([]string{"a", "b", "c", "d", "e"}, 2))
}
