package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
	"github.com/docuchat/docuchat/internal/pkg/jwt"
	"github.com/docuchat/docuchat/internal/repo"
	"github.com/docuchat/docuchat/internal/service"
	"github.com/docuchat/docuchat/test/testutil"
)

func TestAuthRegisterLoginRoundTrip(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	auth := service.NewAuthService(repo.NewUserRepo(db), "test-secret", time.Hour)

	user, token, err := auth.Register(context.Background(), "Alice@Example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEmpty(t, token)

	claims, err := jwt.ParseToken(token, []byte("test-secret"))
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)

	loggedIn, token2, err := auth.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, token2)
}

func TestAuthRegisterValidation(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	auth := service.NewAuthService(repo.NewUserRepo(db), "test-secret", time.Hour)

	_, _, err := auth.Register(context.Background(), "not-an-email", "password123")
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, _, err = auth.Register(context.Background(), "bob@example.com", "short")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	auth := service.NewAuthService(repo.NewUserRepo(db), "test-secret", time.Hour)

	_, _, err := auth.Register(context.Background(), "carol@example.com", "password123")
	require.NoError(t, err)

	_, _, err = auth.Register(context.Background(), "carol@example.com", "different456")
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	auth := service.NewAuthService(repo.NewUserRepo(db), "test-secret", time.Hour)

	_, _, err := auth.Register(context.Background(), "dave@example.com", "password123")
	require.NoError(t, err)

	_, _, err = auth.Login(context.Background(), "dave@example.com", "wrongwrong")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)

	_, _, err = auth.Login(context.Background(), "nobody@example.com", "password123")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}
