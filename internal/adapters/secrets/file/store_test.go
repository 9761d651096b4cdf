package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/claude-usage-tracker/internal/domain"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "secret key is empty"},
		{name: "whitespace", key: "   ", wantErr: "secret key is empty"},
		{name: "absolute", key: "/etc/passwd", wantErr: "invalid secret key"},
		{name: "traversal", key: "../escape", wantErr: "invalid secret key"},
		{name: "deep traversal", key: "../../session_key", wantErr: "invalid secret key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	err := store.Put(context.Background(), "session_key", "sk-ant-sid01-abc")
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "session_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-sid01-abc", got)

	info, err := os.Stat(filepath.Join(root, "session_key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(secretFileMode), info.Mode().Perm())
}

func TestStoreGetMissingKeyReturnsSecretNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "org_id")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteIsIdempotentWhenSecretMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	require.NoError(t, store.Delete(context.Background(), "org_id"))
	require.NoError(t, store.Delete(context.Background(), "org_id"))
}
