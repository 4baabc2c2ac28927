package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/apptest"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
)

func TestRegisterLoginLogout(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	svc := user.NewService(env.Users)
	sessions := memory.NewSessionStore()
	tokens := jwt.NewManager("secret", time.Hour, 24*time.Hour)

	registered, err := NewRegisterUseCase(svc).Execute(ctx, RegisterRequest{
		Email:    "lib@example.com",
		Password: "passw0rd",
		Nickname: "馆员",
		Role:     user.RoleLibrarian,
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleLibrarian, registered.Role)

	login := NewLoginUseCase(svc, tokens, sessions, logger.Discard())
	resp, err := login.Execute(ctx, LoginRequest{Email: "lib@example.com", Password: "passw0rd", ClientIP: "10.0.0.1"})
	require.NoError(t, err)

	claims, err := tokens.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(string(user.RoleLibrarian)))
	assert.False(t, claims.HasRole(string(user.RoleAdmin)))

	session, err := sessions.GetSession(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", session["ip"])

	_, err = login.Execute(ctx, LoginRequest{Email: "lib@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	require.NoError(t, NewLogoutUseCase(sessions, tokens).Execute(ctx, registered.ID, resp.AccessToken))
	blacklisted, err := sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestRegister_DefaultsToReader(t *testing.T) {
	env := apptest.New(t)
	resp, err := NewRegisterUseCase(user.NewService(env.Users)).Execute(context.Background(), RegisterRequest{
		Email:    "reader@example.com",
		Password: "passw0rd",
		Nickname: "读者",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, resp.Role)
}

func TestDeleteUser_LibrarianRule(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	remove := NewDeleteUserUseCase(env.Users, env.Tx)

	librarian := env.User(t, "lib@example.com", user.RoleLibrarian)
	reader := env.User(t, "reader@example.com", user.RoleUser)

	err := remove.Execute(ctx, DeleteUserRequest{UserID: librarian.ID, ActorRole: user.RoleLibrarian})
	assert.ErrorIs(t, err, user.ErrForbiddenDeleteStaff)
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.CategoryOf(err))

	require.NoError(t, remove.Execute(ctx, DeleteUserRequest{UserID: reader.ID, ActorRole: user.RoleLibrarian}))
	require.NoError(t, remove.Execute(ctx, DeleteUserRequest{UserID: librarian.ID, ActorRole: user.RoleAdmin}))

	page, err := NewListUsersUseCase(env.Users).Execute(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = NewGetUserUseCase(env.Users).Execute(ctx, reader.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
