// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"potluck/internal/config"
	"potluck/internal/database"
	"potluck/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seq atomic.Uint64

// NewTestDB returns a fresh in-memory SQLite database with the full schema.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Env:          "test",
		DBDriver:     "sqlite",
		DBSQLitePath: ":memory:",
		DBSchemaMode: database.SchemaModeAuto,
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.ApplySchema(context.Background(), db, cfg))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Password is the plain-text password of every user made by CreateUser.
const Password = "correct-horse-battery"

var passwordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser inserts a user with a unique username and email.
func CreateUser(t testing.TB, db *gorm.DB) *models.User {
	t.Helper()
	n := seq.Add(1)
	u := &models.User{
		Username: fmt.Sprintf("cook%d", n),
		Email:    fmt.Sprintf("cook%d@example.com", n),
		Password: passwordHash,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a Recipes post owned by userID.
func CreatePost(t testing.TB, db *gorm.DB, userID uint, title string) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:   userID,
		Title:    title,
		Category: models.CategoryRecipes,
		Content:  "content of " + title,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CountRows returns the number of rows of model matching postID.
func CountRows(t testing.TB, db *gorm.DB, model any, postID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where("post_id = ?", postID).Count(&n).Error)
	return n
}
