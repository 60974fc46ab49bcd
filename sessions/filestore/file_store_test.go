package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/internal/utils"
	"github.com/jrsteele09/go-session-client/sessions"
	"github.com/jrsteele09/go-session-client/sessions/filestore"
	"github.com/stretchr/testify/require"
)

func testSession() sessions.Session {
	return sessions.Session{
		AccessToken:  utils.Ptr("T1"),
		RefreshToken: utils.Ptr("R1"),
		AccountID:    utils.Ptr("42"),
		DisplayName:  utils.Ptr("A B"),
		Email:        utils.Ptr("a@b.com"),
		AvatarURL:    utils.Ptr("https://cdn.example.com/a.png"),
		Roles:        []string{"STAFF"},
	}
}

func TestStore_ReadMissingFileFailsSoft(t *testing.T) {
	store := filestore.New(filepath.Join(t.TempDir(), "nested", "session.json"))

	s, err := store.Read(context.Background())
	require.NoError(t, err)
	require.False(t, s.HasAccessToken())
	require.NotNil(t, s.Roles)
}

func TestStore_WriteReadClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := filestore.New(filepath.Join(dir, "session.json"))

	require.NoError(t, store.Write(ctx, testSession()))

	s, err := store.Read(ctx)
	require.NoError(t, err)
	require.True(t, s.Equal(testSession()))

	replacement := sessions.Session{AccessToken: utils.Ptr("T2"), AccountID: utils.Ptr("42"), Roles: []string{}}
	require.NoError(t, store.Write(ctx, replacement))
	s, err = store.Read(ctx)
	require.NoError(t, err)
	require.True(t, s.Equal(replacement))
	require.Nil(t, s.RefreshToken, "write replaces the whole record")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files left behind")

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	s, err = store.Read(ctx)
	require.NoError(t, err)
	require.False(t, s.HasAccessToken())
}

func TestStore_CorruptFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := filestore.New(path).Read(context.Background())
	require.ErrorIs(t, err, errs.ErrStoreRead)
	require.False(t, s.HasAccessToken())
}

func TestStore_SealedAtRest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	keyPath := filepath.Join(dir, "keys", "session.key")

	sealer, err := filestore.LoadOrCreateAgeSealer(keyPath)
	require.NoError(t, err)
	store := filestore.New(path, filestore.WithSealer(sealer))
	require.NoError(t, store.Write(ctx, testSession()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "T1")

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := filestore.LoadOrCreateAgeSealer(keyPath)
	require.NoError(t, err)
	s, err := filestore.New(path, filestore.WithSealer(reloaded)).Read(ctx)
	require.NoError(t, err)
	require.True(t, s.Equal(testSession()))
}

func TestStore_WrongKeyCannotOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	owner, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	other, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	require.NoError(t, filestore.New(path, filestore.WithSealer(filestore.NewAgeSealer(owner))).Write(ctx, testSession()))

	s, err := filestore.New(path, filestore.WithSealer(filestore.NewAgeSealer(other))).Read(ctx)
	require.Error(t, err)
	require.False(t, s.HasAccessToken())
}
