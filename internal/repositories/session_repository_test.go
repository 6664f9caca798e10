package repository_test

import (
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	ctx := t.Context()
	session := &models.Session{
		UserID:    "42",
		Username:  "jane",
		Email:     "jane@example.com",
		Role:      models.RoleCustomer,
		Token:     "token-abc",
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Success - Save Writes Both Keys With Expiry", func(t *testing.T) {
		// Arrange
		mr, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)

		// Act
		err := repo.Save(ctx, "sid-1", session, 2*time.Hour)

		// Assert
		require.NoError(t, err)

		token, err := mr.Get("session:sid-1:token")
		require.NoError(t, err)
		assert.Equal(t, "token-abc", token)

		user, err := mr.Get("session:sid-1:user")
		require.NoError(t, err)
		assert.NotContains(t, user, "token-abc")
		assert.Contains(t, user, `"user_id":"42"`)

		assert.Equal(t, 2*time.Hour, mr.TTL("session:sid-1:token"))
		assert.Equal(t, 2*time.Hour, mr.TTL("session:sid-1:user"))
	})

	t.Run("Success - Round Trip", func(t *testing.T) {
		// Arrange
		_, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)
		require.NoError(t, repo.Save(ctx, "sid-2", session, time.Hour))

		// Act
		loaded, err := repo.Load(ctx, "sid-2")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, session.UserID, loaded.UserID)
		assert.Equal(t, session.Username, loaded.Username)
		assert.Equal(t, session.Role, loaded.Role)
		assert.Equal(t, session.Token, loaded.Token)
		assert.True(t, session.ExpiresAt.Equal(loaded.ExpiresAt))
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		_, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)

		// Act
		loaded, err := repo.Load(ctx, "absent")

		// Assert
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
		assert.Nil(t, loaded)
	})

	t.Run("Failure - Token Without User", func(t *testing.T) {
		// Arrange
		mr, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)
		require.NoError(t, mr.Set("session:sid-3:token", "token-abc"))

		// Act
		loaded, err := repo.Load(ctx, "sid-3")

		// Assert
		assert.ErrorIs(t, err, repository.ErrCorruptSession)
		assert.Nil(t, loaded)
	})

	t.Run("Failure - Undecodable User", func(t *testing.T) {
		// Arrange
		mr, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)
		require.NoError(t, mr.Set("session:sid-4:token", "token-abc"))
		require.NoError(t, mr.Set("session:sid-4:user", "{not json"))

		// Act
		loaded, err := repo.Load(ctx, "sid-4")

		// Assert
		assert.ErrorIs(t, err, repository.ErrCorruptSession)
		assert.Nil(t, loaded)
	})

	t.Run("Failure - Empty User ID", func(t *testing.T) {
		// Arrange
		mr, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)
		require.NoError(t, mr.Set("session:sid-5:token", "token-abc"))
		require.NoError(t, mr.Set("session:sid-5:user", `{"username":"ghost"}`))

		// Act
		loaded, err := repo.Load(ctx, "sid-5")

		// Assert
		assert.ErrorIs(t, err, repository.ErrCorruptSession)
		assert.Nil(t, loaded)
	})

	t.Run("Failure - Non Positive TTL", func(t *testing.T) {
		// Arrange
		mr, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)

		// Act
		err := repo.Save(ctx, "sid-6", session, 0)

		// Assert
		require.Error(t, err)
		assert.False(t, mr.Exists("session:sid-6:token"))
	})

	t.Run("Success - Delete Removes Both Keys", func(t *testing.T) {
		// Arrange
		mr, client := setupRedis(t)
		repo := repository.NewSessionRepo(client)
		require.NoError(t, repo.Save(ctx, "sid-7", session, time.Hour))

		// Act
		err := repo.Delete(ctx, "sid-7")

		// Assert
		require.NoError(t, err)
		assert.False(t, mr.Exists("session:sid-7:token"))
		assert.False(t, mr.Exists("session:sid-7:user"))
	})
}
