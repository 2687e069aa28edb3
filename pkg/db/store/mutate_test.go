package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/mwantia/mediacat/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSharesClassRows(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "/img/1.png", []string{"cat"}, "aa11"))
	require.NoError(t, s.Insert(ctx, "/img/2.png", []string{"cat"}, "bb22"))

	assert.Equal(t, int64(2), count(t, s, &models.Media{}))
	assert.Equal(t, int64(1), count(t, s, &models.Class{}))
	assert.Equal(t, int64(2), count(t, s, &models.Junction{}))
}

func TestInsertIgnoresDuplicateAndEmptyClasses(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "/img/1.png", []string{"cat", "cat", "", "dog"}, "aa11"))

	assert.Equal(t, int64(2), count(t, s, &models.Class{}))
	assert.Equal(t, int64(2), count(t, s, &models.Junction{}))
}

func TestInsertStoresLabelsVerbatim(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "/img/1.png", []string{"cat", " cat "}, "aa11"))

	var labels []string
	require.NoError(t, s.DB().Model(&models.Class{}).Order("classID").Pluck("class", &labels).Error)
	assert.Equal(t, []string{"cat", " cat "}, labels)
}

func TestInsertExistingHashRelocates(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "/img/1.png", []string{"cat"}, "aa11"))
	require.NoError(t, s.ToggleVisibility(ctx, []string{"/img/1.png"}, true))
	require.NoError(t, s.Insert(ctx, "/moved/1.png", []string{"dog"}, "aa11"))

	assert.Equal(t, int64(1), count(t, s, &models.Media{}))

	// Neither the classes nor the hidden flag change on relocation.
	groups, err := s.GroupByClass(ctx, VisibilityHidden, AttributePath)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"cat": {"/moved/1.png"}}, groups)
	assert.Equal(t, int64(1), count(t, s, &models.Class{}))
}

func TestInsertRoundTripWithoutClasses(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "/p1", []string{"c"}, "h"))
	require.NoError(t, s.Insert(ctx, "/p2", nil, "h"))

	groups, err := s.GroupByClass(ctx, VisibilityShown, AttributePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"/p2"}, groups["c"])
}

func TestInsertRequiresHashAndPath(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Insert(ctx, "/img/1.png", nil, ""), ErrEmptyHash)
	assert.ErrorIs(t, s.Insert(ctx, "", nil, "aa11"), ErrEmptyPath)
}

func TestFindOrCreateClassRereadsExisting(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, existing, err := s.ExecuteWithID(ctx, "INSERT INTO CLASS(class) VALUES(?)", "cat")
	require.NoError(t, err)

	id, err := s.findOrCreateClass(s.DB().WithContext(ctx), "cat")
	require.NoError(t, err)
	assert.Equal(t, uint(existing), id)
}

func TestToggleVisibility(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	seedCatalog(t, s)

	require.NoError(t, s.ToggleVisibility(ctx, []string{"/img/1.png", "/img/unknown.png"}, true))

	hidden, err := s.ListMedia(ctx, VisibilityHidden)
	require.NoError(t, err)
	require.Len(t, hidden, 1)
	assert.Equal(t, "/img/1.png", hidden[0].Path)

	require.NoError(t, s.ToggleVisibility(ctx, nil, true))
}

func TestHideUnhideByClassRoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	seedCatalog(t, s)
	require.NoError(t, s.Insert(ctx, "/img/3.png", []string{"bird"}, "cc33"))

	before, err := s.GroupByClass(ctx, VisibilityShown, AttributePath)
	require.NoError(t, err)

	require.NoError(t, s.HideByClass(ctx, []string{"cat"}))

	shown, err := s.ListMedia(ctx, VisibilityShown)
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, "/img/3.png", shown[0].Path)

	require.NoError(t, s.UnhideByClass(ctx, []string{"cat"}))

	after, err := s.GroupByClass(ctx, VisibilityShown, AttributePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteRemovesRowsAndFiles(t *testing.T) {
	s, files := setupTestStore(t, "/img/1.png", "/img/2.png")
	ctx := context.Background()
	seedCatalog(t, s)

	require.NoError(t, s.Delete(ctx, []string{"/img/1.png", "/img/unknown.png"}))

	exists, err := s.HashExists(ctx, "aa11")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, int64(2), count(t, s, &models.Junction{}))

	onDisk, err := files.Exists("/img/1.png")
	require.NoError(t, err)
	assert.False(t, onDisk)

	onDisk, err = files.Exists("/img/2.png")
	require.NoError(t, err)
	assert.True(t, onDisk)
}

func TestDeleteLeavesUncataloguedFiles(t *testing.T) {
	s, files := setupTestStore(t, "/img/1.png", "/etc/keep.conf")
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "/img/1.png", []string{"cat"}, "aa11"))

	require.NoError(t, s.Delete(ctx, []string{"/etc/keep.conf"}))

	onDisk, err := files.Exists("/etc/keep.conf")
	require.NoError(t, err)
	assert.True(t, onDisk)

	onDisk, err = files.Exists("/img/1.png")
	require.NoError(t, err)
	assert.True(t, onDisk)
	assert.Equal(t, int64(1), count(t, s, &models.Media{}))
}

func TestDeleteByClass(t *testing.T) {
	s, files := setupTestStore(t, "/img/1.png", "/img/2.png", "/img/3.png")
	ctx := context.Background()
	seedCatalog(t, s)
	require.NoError(t, s.Insert(ctx, "/img/3.png", []string{"bird"}, "cc33"))
	require.NoError(t, s.ToggleVisibility(ctx, []string{"/img/2.png"}, true))

	require.NoError(t, s.DeleteByClass(ctx, []string{"dog"}))

	// Hidden members are deleted as well.
	remaining, err := s.ListMedia(ctx, VisibilityAny)
	require.NoError(t, err)
	paths := make([]string, 0, len(remaining))
	for _, media := range remaining {
		paths = append(paths, media.Path)
	}
	assert.ElementsMatch(t, []string{"/img/1.png", "/img/3.png"}, paths)

	for path, want := range map[string]bool{"/img/1.png": true, "/img/2.png": false, "/img/3.png": true} {
		onDisk, err := files.Exists(path)
		require.NoError(t, err)
		assert.Equal(t, want, onDisk, "path %s", path)
	}

	// The label survives its last member.
	assert.Equal(t, int64(3), count(t, s, &models.Class{}))
}

func TestDeleteManyPathsInBatches(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	var paths []string
	for i := range 7 {
		path := fmt.Sprintf("/img/%d.png", i)
		require.NoError(t, s.Insert(ctx, path, []string{"bulk"}, fmt.Sprintf("h%d", i)))
		paths = append(paths, path)
	}

	require.NoError(t, s.Delete(ctx, paths))
	assert.Zero(t, count(t, s, &models.Media{}))
	assert.Zero(t, count(t, s, &models.Junction{}))
}

func TestPruneClasses(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	seedCatalog(t, s)

	require.NoError(t, s.Delete(ctx, []string{"/img/2.png"}))

	pruned, err := s.PruneClasses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	var labels []string
	require.NoError(t, s.DB().Model(&models.Class{}).Pluck("class", &labels).Error)
	assert.Equal(t, []string{"cat"}, labels)
}
