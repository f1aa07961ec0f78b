package repository

import (
	"context"
	"errors"
	"testing"

	"potluck/internal/models"
	"potluck/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)

	loc := "Berlin"
	post := &models.Post{UserID: author.ID, Title: "Bread", Category: models.CategoryOffers, Content: "Fresh loaves", Location: &loc}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Bread", got.Title)
	assert.Equal(t, models.CategoryOffers, got.Category)
	require.NotNil(t, got.User)
	assert.Equal(t, author.Username, got.User.Username)
	assert.Zero(t, got.LikesCount)
	assert.Zero(t, got.CommentsCount)
	assert.Zero(t, got.SharesCount)
	assert.False(t, got.Liked)

	exists, err := repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, 9999, 0)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	exists, err = repo.Exists(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostRepository_GetWithEngagement(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID, "Soup")

	first := &models.Comment{PostID: post.ID, UserID: fan.ID, Body: "first"}
	second := &models.Comment{PostID: post.ID, UserID: author.ID, Body: "second"}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: fan.ID}).Error)
	require.NoError(t, db.Create(&models.Share{PostID: post.ID, UserID: fan.ID}).Error)

	got, err := repo.GetWithEngagement(ctx, post.ID, fan.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 2, got.CommentsCount)
	assert.Equal(t, 1, got.SharesCount)
	assert.True(t, got.Liked)

	require.Len(t, got.Comments, 2)
	assert.Equal(t, second.ID, got.Comments[0].ID, "comments are newest first")
	require.NotNil(t, got.Comments[0].User)
	assert.Equal(t, author.Username, got.Comments[0].User.Username)
	require.Len(t, got.Likes, 1)
	require.NotNil(t, got.Likes[0].User)
	require.Len(t, got.Shares, 1)
	require.NotNil(t, got.Shares[0].User)

	asAuthor, err := repo.GetWithEngagement(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, asAuthor.Liked)

	_, err = repo.GetWithEngagement(ctx, post.ID+100, 0)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_ListOrderingAndPages(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)

	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, testutil.CreatePost(t, db, author.ID, "post").ID)
	}
	offer := &models.Post{UserID: author.ID, Title: "Spare jars", Category: models.CategoryOffers, Content: "free"}
	require.NoError(t, repo.Create(ctx, offer))
	ids = append(ids, offer.ID)

	seen := map[uint]bool{}
	var ordered []uint
	for offset := 0; offset < 6; offset += 4 {
		page, total, err := repo.List(ctx, PostFilter{Limit: 4, Offset: offset})
		require.NoError(t, err)
		assert.EqualValues(t, 6, total)
		for _, p := range page {
			assert.False(t, seen[p.ID], "post %d returned twice", p.ID)
			seen[p.ID] = true
			ordered = append(ordered, p.ID)
			require.NotNil(t, p.User)
		}
	}
	require.Len(t, ordered, 6)
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i-1], ordered[i], "newest first")
	}

	offers, total, err := repo.List(ctx, PostFilter{Category: models.CategoryOffers, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, offers, 1)
	assert.Equal(t, offer.ID, offers[0].ID)

	beyond, total, err := repo.List(ctx, PostFilter{Limit: 10, Offset: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Empty(t, beyond)
}

func TestPostRepository_UpdateChecksBeforeWriting(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID, "Original")

	denied := models.NewForbiddenError("nope")
	err := repo.Update(ctx, post.ID, func(*models.Post) error { return denied }, map[string]any{"title": "Hijacked"})
	assert.ErrorIs(t, err, denied)

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)

	var checked *models.Post
	err = repo.Update(ctx, post.ID, func(p *models.Post) error { checked = p; return nil }, map[string]any{"title": "Renamed"})
	require.NoError(t, err)
	require.NotNil(t, checked)
	assert.Equal(t, author.ID, checked.UserID)

	got, err = repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	err = repo.Update(ctx, 4242, nil, map[string]any{"title": "x"})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_DeleteCascade(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID, "Doomed")
	other := testutil.CreatePost(t, db, author.ID, "Survivor")

	for _, p := range []*models.Post{post, other} {
		require.NoError(t, db.Create(&models.Comment{PostID: p.ID, UserID: fan.ID, Body: "hi"}).Error)
		require.NoError(t, db.Create(&models.Like{PostID: p.ID, UserID: fan.ID}).Error)
		require.NoError(t, db.Create(&models.Share{PostID: p.ID, UserID: fan.ID}).Error)
	}

	require.NoError(t, repo.DeleteCascade(ctx, post.ID, nil))

	for _, model := range []any{&models.Comment{}, &models.Like{}, &models.Share{}} {
		assert.Zero(t, testutil.CountRows(t, db, model, post.ID), "%T left behind", model)
		assert.EqualValues(t, 1, testutil.CountRows(t, db, model, other.ID), "%T of other post removed", model)
	}
	_, err := repo.GetByID(ctx, post.ID, 0)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	err = repo.DeleteCascade(ctx, post.ID, nil)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_DeleteCascadeRejectedKeepsEverything(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID, "Kept")
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, UserID: author.ID, Body: "stay"}).Error)

	err := repo.DeleteCascade(context.Background(), post.ID, func(*models.Post) error {
		return models.NewForbiddenError("not yours")
	})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	assert.EqualValues(t, 1, testutil.CountRows(t, db, &models.Comment{}, post.ID))
	exists, err := repo.Exists(context.Background(), post.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostRepository_DeleteCascadePostgresStatements(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","user_id" FROM "posts" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(7, 3))
	mock.ExpectExec(`DELETE FROM "comments" WHERE post_id = \$1`).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "likes" WHERE post_id = \$1`).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "shares" WHERE post_id = \$1`).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "posts" WHERE "posts"."id" = \$1`).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), 7, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeleteCascadeRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","user_id" FROM "posts" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(7, 3))
	mock.ExpectExec(`DELETE FROM "comments"`).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "likes"`).WithArgs(7).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), 7, nil)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
