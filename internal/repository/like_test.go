package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"potluck/internal/models"
	"potluck/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_ToggleTwiceRestoresState(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	fan := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID, "Pie")

	res, err := repo.Toggle(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.EqualValues(t, 1, res.LikesCount)

	res, err = repo.Toggle(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.EqualValues(t, 0, res.LikesCount)

	n, err := repo.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLikeRepository_ToggleMissingPost(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	fan := testutil.CreateUser(t, db)

	_, err := repo.Toggle(context.Background(), 404, fan.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Zero(t, testutil.CountRows(t, db, &models.Like{}, 404))
}

func TestLikeRepository_ConcurrentToggles(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID, "Popular")

	const users = 8
	fans := make([]*models.User, users)
	for i := range fans {
		fans[i] = testutil.CreateUser(t, db)
	}

	// Every fan toggles once concurrently, the first fan three times.
	var wg sync.WaitGroup
	errs := make(chan error, users+2)
	toggle := func(userID uint) {
		defer wg.Done()
		if _, err := repo.Toggle(ctx, post.ID, userID); err != nil {
			errs <- err
		}
	}
	for _, f := range fans {
		wg.Add(1)
		go toggle(f.ID)
	}
	wg.Add(2)
	go toggle(fans[0].ID)
	go toggle(fans[0].ID)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	n, err := repo.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, users, n)

	var dupes int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", post.ID, fans[0].ID).
		Count(&dupes).Error)
	assert.EqualValues(t, 1, dupes)
}

func expectLockedPost(mock sqlmock.Sqlmock, postID uint) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","user_id" FROM "posts" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs(postID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(postID, 3))
}

func TestLikeRepository_TogglePostgresStatements(t *testing.T) {
	t.Run("like", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLikeRepository(db)

		expectLockedPost(mock, 7)
		mock.ExpectExec(`DELETE FROM "likes" WHERE post_id = \$1 AND user_id = \$2`).
			WithArgs(7, 9).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO "likes" .* ON CONFLICT \("post_id","user_id"\) DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE post_id = \$1`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
		mock.ExpectCommit()

		res, err := repo.Toggle(context.Background(), 7, 9)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.EqualValues(t, 4, res.LikesCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unlike skips the insert", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewLikeRepository(db)

		expectLockedPost(mock, 7)
		mock.ExpectExec(`DELETE FROM "likes" WHERE post_id = \$1 AND user_id = \$2`).
			WithArgs(7, 9).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE post_id = \$1`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectCommit()

		res, err := repo.Toggle(context.Background(), 7, 9)
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.EqualValues(t, 3, res.LikesCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLikeRepository_ToggleRollsBackOnInsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	expectLockedPost(mock, 7)
	mock.ExpectExec(`DELETE FROM "likes"`).WithArgs(7, 9).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "likes" .* ON CONFLICT \("post_id","user_id"\) DO NOTHING`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	res, err := repo.Toggle(context.Background(), 7, 9)
	assert.Nil(t, res)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
