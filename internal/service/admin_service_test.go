package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"corpintranet/portal/internal/config"
	"corpintranet/portal/internal/domain"
)

func TestAdminService_SetRole(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	admin := users.add("Root", "root@corp.example")
	emp := users.add("Ana", "ana@corp.example")
	svc := NewAdminService(users, NewPointsService(newFakePointsRepo(), config.PointsConfig{}, nil), nil)

	require.NoError(t, svc.SetRole(ctx, admin.ID, emp.ID, domain.RoleAdmin))
	stored, _ := users.GetByID(ctx, emp.ID)
	assert.Equal(t, domain.RoleAdmin, stored.Role)

	assert.ErrorIs(t, svc.SetRole(ctx, admin.ID, emp.ID, "owner"), ErrInvalidInput)
	assert.ErrorIs(t, svc.SetRole(ctx, admin.ID, admin.ID, domain.RoleEmployee), ErrInvalidInput)
	assert.ErrorIs(t, svc.SetRole(ctx, admin.ID, primitive.NewObjectID(), domain.RoleAdmin), ErrUserNotFound)
}

func TestAdminService_ListUsersHidesHashes(t *testing.T) {
	users := newFakeUserRepo()
	u := users.add("Ana", "ana@corp.example")
	users.users[u.ID].PasswordHash = "hash"

	list, err := NewAdminService(users, nil, nil).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].PasswordHash)
}

func TestPointsService(t *testing.T) {
	ctx := context.Background()
	repo := newFakePointsRepo()
	svc := NewPointsService(repo, config.PointsConfig{Post: 10, Comment: 2}, nil)
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	n, err := svc.Award(ctx, a, domain.PointsForPost, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// Unconfigured reasons are worth nothing and leave no ledger entry.
	n, err = svc.Award(ctx, a, domain.PointsForLike, "p1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, repo.entries, 1)

	_, err = svc.Award(ctx, b, domain.PointsForComment, "p1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Adjust(ctx, b, 0, "noop"), ErrInvalidInput)
	require.NoError(t, svc.Adjust(ctx, b, 20, "event"))

	board, err := svc.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, b, board[0].UserID)
	assert.Equal(t, 22, board[0].Points)

	history, err := svc.History(ctx, b, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
