package services

import (
	"strings"
	"testing"
	"time"
	"verba/internal/db"
	"verba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreateAndReply(t *testing.T) {
	f := setupFixture(t)
	svc := NewCommentService()

	root, err := svc.Create(f.Article.ID, f.User.ID, "first!", nil)
	require.NoError(t, err)
	assert.False(t, root.IsReply())
	assert.Equal(t, "alice", root.Author.Username)

	reply, err := svc.Create(f.Article.ID, f.User.ID, "replying", &root.ID)
	require.NoError(t, err)
	assert.True(t, reply.IsReply())
}

func TestCommentCreateValidation(t *testing.T) {
	f := setupFixture(t)
	svc := NewCommentService()

	_, err := svc.Create(f.Article.ID, f.User.ID, "   ", nil)
	_, ok := models.AsValidation(err)
	assert.True(t, ok, "blank content should fail validation")

	_, err = svc.Create(f.Article.ID, f.User.ID, strings.Repeat("x", models.MaxCommentLen+1), nil)
	_, ok = models.AsValidation(err)
	assert.True(t, ok, "oversized content should fail validation")

	_, err = svc.Create(9999, f.User.ID, "orphan", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCommentRejectsCrossArticleParent(t *testing.T) {
	f := setupFixture(t)
	svc := NewCommentService()

	other := createTestArticle(t, f.User, f.Category, "Second article")
	parent, err := svc.Create(other.ID, f.User.ID, "on the other article", nil)
	require.NoError(t, err)

	_, err = svc.Create(f.Article.ID, f.User.ID, "wrong thread", &parent.ID)
	assert.ErrorIs(t, err, models.ErrCrossArticleParent)
}

func TestCommentTreeOrderAndDepth(t *testing.T) {
	f := setupFixture(t)
	svc := NewCommentService()

	mkAt := func(content string, parentID *uint, at time.Time) *models.Comment {
		comment, err := svc.Create(f.Article.ID, f.User.ID, content, parentID)
		require.NoError(t, err)
		require.NoError(t, db.DB.Model(&models.Comment{}).Where("id = ?", comment.ID).
			Update("created_at", at).Error)
		return comment
	}

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	older := mkAt("older root", nil, base)
	newer := mkAt("newer root", nil, base.Add(time.Hour))
	replyOld := mkAt("older reply", &older.ID, base.Add(2*time.Hour))
	replyNew := mkAt("newer reply", &older.ID, base.Add(3*time.Hour))

	tree, err := svc.ListTree(f.Article.ID)
	require.NoError(t, err)
	require.Len(t, tree, 4)

	// Newest root first, then the older root directly followed by its replies
	assert.Equal(t, newer.ID, tree[0].ID)
	assert.Equal(t, older.ID, tree[1].ID)
	assert.Equal(t, replyNew.ID, tree[2].ID)
	assert.Equal(t, replyOld.ID, tree[3].ID)

	assert.Equal(t, 0, tree[0].Depth)
	assert.Equal(t, 0, tree[1].Depth)
	assert.Equal(t, 1, tree[2].Depth)
	assert.Equal(t, 1, tree[3].Depth)
}

func TestCommentDeleteSweepsSubtreeAndChecksOwner(t *testing.T) {
	f := setupFixture(t)
	svc := NewCommentService()

	other, _ := createTestUser(t, "bob")

	root, err := svc.Create(f.Article.ID, f.User.ID, "root", nil)
	require.NoError(t, err)
	reply, err := svc.Create(f.Article.ID, other.ID, "reply", &root.ID)
	require.NoError(t, err)
	_, err = svc.Create(f.Article.ID, f.User.ID, "reply to reply", &reply.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(root.ID, other.ID), models.ErrNotOwner)

	require.NoError(t, svc.Delete(root.ID, f.User.ID))
	var count int64
	db.DB.Model(&models.Comment{}).Where("article_id = ?", f.Article.ID).Count(&count)
	assert.Zero(t, count, "the whole subtree goes with the root")
}

func TestLatestPublished(t *testing.T) {
	f := setupFixture(t)
	svc := NewCommentService()

	for i := 0; i < 7; i++ {
		_, err := svc.Create(f.Article.ID, f.User.ID, "comment", nil)
		require.NoError(t, err)
	}

	latest, err := svc.LatestPublished(5)
	require.NoError(t, err)
	assert.Len(t, latest, 5)
}
