package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"photoshare/filestore"
	"photoshare/service"
	"photoshare/session"
	"photoshare/store"
)

func TestSeederRun(t *testing.T) {
	ctx := context.Background()
	files, err := filestore.NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	users := store.NewMemoryUsers()
	svc := service.New(service.Deps{
		Users:      users,
		Photos:     store.NewMemoryPhotos(),
		Favorites:  store.NewMemoryFavorites(),
		Files:      files,
		Sessions:   session.NewManager(session.NewMemoryStore(), "seed-secret", time.Hour),
		BcryptCost: bcrypt.MinCost,
	})

	res, err := NewSeeder(svc, 42).Run(ctx, Options{Users: 3, PhotosPerUser: 2, Comments: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Users)
	assert.Equal(t, 6, res.Photos)
	assert.Equal(t, 10, res.Comments)

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Seeded accounts accept the shared password.
	_, err = svc.Accounts.Login(ctx, all[0].LoginName, Password)
	assert.NoError(t, err)
}

func TestSeederNoUsers(t *testing.T) {
	svc := service.New(service.Deps{
		Users:     store.NewMemoryUsers(),
		Photos:    store.NewMemoryPhotos(),
		Favorites: store.NewMemoryFavorites(),
	})
	res, err := NewSeeder(svc, 1).Run(context.Background(), Options{Comments: 5})
	require.NoError(t, err)
	assert.Zero(t, res.Comments)
}
