package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/storage"
	"github.com/mcoot/tcgarena/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		store, err := Open(filepath.Join(s.T().TempDir(), "tcgarena.db"))
		s.Require().NoError(err)
		return store
	}
	suite.Run(t, s)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tcgarena.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	user := &model.User{Username: "brock", Email: "brock@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetUserByEmail(ctx, "brock@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	require.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", extractUp(content))
	require.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}
