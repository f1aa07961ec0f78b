package repository

import (
	"context"
	"regexp"
	"testing"

	"potluck/internal/models"
	"potluck/internal/testutil"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewShareRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	sharer := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, author.ID, "Casserole")

	to := "facebook"
	share := &models.Share{PostID: post.ID, UserID: sharer.ID, SharedTo: &to}
	require.NoError(t, repo.Create(ctx, share))

	require.NotNil(t, share.User)
	assert.Equal(t, sharer.Username, share.User.Username)
	require.NotNil(t, share.Post)
	assert.Equal(t, "Casserole", share.Post.Title)
	require.NotNil(t, share.Post.User)
	assert.Equal(t, author.Username, share.Post.User.Username)

	// Shares are append-only: sharing again adds a row.
	require.NoError(t, repo.Create(ctx, &models.Share{PostID: post.ID, UserID: sharer.ID}))
	assert.EqualValues(t, 2, testutil.CountRows(t, db, &models.Share{}, post.ID))
}

func TestShareRepository_CreateOnMissingPost(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewShareRepository(db)
	sharer := testutil.CreateUser(t, db)

	err := repo.Create(context.Background(), &models.Share{PostID: 321, UserID: sharer.ID})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestShareRepository_CreateForeignKeyViolations(t *testing.T) {
	tests := []struct {
		constraint string
		wantCode   string
	}{
		{"fk_posts_shares", models.CodeNotFound},
		{"fk_shares_user", models.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewShareRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "shares"`)).
				WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &models.Share{PostID: 7, UserID: 9})
			assert.Equal(t, tt.wantCode, models.ErrorCode(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
