package services

import (
	"testing"
	"verba/internal/db"
	"verba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreateFillsSlug(t *testing.T) {
	setupTestDB(t)
	svc := NewCategoryService()

	category := models.Category{Title: "Настройка сервера"}
	require.NoError(t, svc.Create(&category, nil))
	assert.Equal(t, "nastrojka-servera", category.Slug)
}

func TestCategoryCreateRejectsEmptyTitle(t *testing.T) {
	setupTestDB(t)
	svc := NewCategoryService()

	err := svc.Create(&models.Category{Title: "   "}, nil)
	_, ok := models.AsValidation(err)
	assert.True(t, ok)
}

func TestCategoryMoveRejectsCycle(t *testing.T) {
	setupTestDB(t)
	svc := NewCategoryService()

	root := models.Category{Title: "Root"}
	require.NoError(t, svc.Create(&root, nil))
	child := models.Category{Title: "Child"}
	require.NoError(t, svc.Create(&child, &root.ID))
	grandchild := models.Category{Title: "Grandchild"}
	require.NoError(t, svc.Create(&grandchild, &child.ID))

	assert.ErrorIs(t, svc.Move(root.ID, &grandchild.ID), models.ErrCategoryCycle)
	assert.ErrorIs(t, svc.Move(root.ID, &root.ID), models.ErrCategoryCycle)

	// A legal reparent still works
	require.NoError(t, svc.Move(grandchild.ID, &root.ID))
	var moved models.Category
	require.NoError(t, db.DB.First(&moved, grandchild.ID).Error)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, root.ID, *moved.ParentID)
}

func TestCategoryDeleteIsAtomic(t *testing.T) {
	f := setupFixture(t)
	svc := NewCategoryService()

	// f.Article sits in f.Category; hang an empty child off that category
	child := models.Category{Title: "Empty child"}
	require.NoError(t, svc.Create(&child, &f.Category.ID))

	err := svc.Delete(f.Category.ID)
	assert.ErrorIs(t, err, models.ErrCategoryInUse)

	// Nothing was deleted, not even the article-free child
	var count int64
	db.DB.Model(&models.Category{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestCategoryDeleteSweepsSubtree(t *testing.T) {
	setupTestDB(t)
	svc := NewCategoryService()

	root := models.Category{Title: "Root"}
	require.NoError(t, svc.Create(&root, nil))
	child := models.Category{Title: "Child"}
	require.NoError(t, svc.Create(&child, &root.ID))
	grandchild := models.Category{Title: "Grandchild"}
	require.NoError(t, svc.Create(&grandchild, &child.ID))

	require.NoError(t, svc.Delete(root.ID))

	var count int64
	db.DB.Model(&models.Category{}).Count(&count)
	assert.Zero(t, count)
}

func TestCategoryChildrenOrdered(t *testing.T) {
	setupTestDB(t)
	svc := NewCategoryService()

	root := models.Category{Title: "Root"}
	require.NoError(t, svc.Create(&root, nil))
	for _, title := range []string{"Zebra", "Apple", "Mango"} {
		c := models.Category{Title: title}
		require.NoError(t, svc.Create(&c, &root.ID))
	}

	children, err := svc.ChildrenOrdered(&root.ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "Apple", children[0].Title)
	assert.Equal(t, "Mango", children[1].Title)
	assert.Equal(t, "Zebra", children[2].Title)
}

func TestCategoryAncestorsAndDescendants(t *testing.T) {
	setupTestDB(t)
	svc := NewCategoryService()

	root := models.Category{Title: "Root"}
	require.NoError(t, svc.Create(&root, nil))
	child := models.Category{Title: "Child"}
	require.NoError(t, svc.Create(&child, &root.ID))
	grandchild := models.Category{Title: "Grandchild"}
	require.NoError(t, svc.Create(&grandchild, &child.ID))

	ancestors, err := svc.Ancestors(grandchild.ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, child.ID, ancestors[0].ID)
	assert.Equal(t, root.ID, ancestors[1].ID)

	descendants, err := svc.Descendants(root.ID)
	require.NoError(t, err)
	require.Len(t, descendants, 2)
	assert.Equal(t, child.ID, descendants[0].ID)
	assert.Equal(t, 1, descendants[0].Depth)
	assert.Equal(t, grandchild.ID, descendants[1].ID)
	assert.Equal(t, 2, descendants[1].Depth)
}

func TestBuildForest(t *testing.T) {
	one := uint(1)
	two := uint(2)
	categories := []models.Category{
		{ID: 2, Title: "B root"},
		{ID: 1, Title: "A root"},
		{ID: 3, Title: "Z child of A", ParentID: &one},
		{ID: 4, Title: "A child of A", ParentID: &one},
		{ID: 5, Title: "Child of B", ParentID: &two},
	}

	forest := BuildForest(categories)
	require.Len(t, forest, 5)

	titles := make([]string, len(forest))
	depths := make([]int, len(forest))
	for i, c := range forest {
		titles[i] = c.Title
		depths[i] = c.Depth
	}
	assert.Equal(t, []string{"A root", "A child of A", "Z child of A", "B root", "Child of B"}, titles)
	assert.Equal(t, []int{0, 1, 1, 0, 1}, depths)
}
