package seed

import (
	"context"
	"testing"

	"autocatalog-backend/internal/auth"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"
	"autocatalog-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureAdmin_OnlyOnce(t *testing.T) {
	testutil.OpenDB(t)
	ctx := context.Background()

	created, err := EnsureAdmin(ctx, "admin", "first-password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(ctx, "admin2", "second-password")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := repository.UserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "first-password"))
}

func TestCatalog_SeedsOnceAndForceKeepsOrders(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()

	seeded, err := Catalog(ctx, false)
	require.NoError(t, err)
	assert.True(t, seeded)

	brands, err := repository.Brands.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), brands)

	seeded, err = Catalog(ctx, false)
	require.NoError(t, err)
	assert.False(t, seeded)

	order := models.Order{Phone: "+992900000000"}
	require.NoError(t, repository.Orders.Create(ctx, &order))
	extra := models.Brand{Name: "Extra"}
	require.NoError(t, repository.Brands.Create(ctx, &extra))

	seeded, err = Catalog(ctx, true)
	require.NoError(t, err)
	assert.True(t, seeded)

	brands, err = repository.Brands.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), brands)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)

	hero, err := repository.BannersByType(ctx, models.BannerHero)
	require.NoError(t, err)
	assert.Len(t, hero, 2)

	cats, err := repository.CategoriesByParent(ctx, nil)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	kids, err := repository.CategoriesByParent(ctx, &cats[0].ID)
	require.NoError(t, err)
	assert.Len(t, kids, 2)
}

func TestRun(t *testing.T) {
	testutil.OpenDB(t)
	require.NoError(t, Run(context.Background(), "admin", "pw-123456", false, zap.NewNop()))

	n, err := repository.Users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
