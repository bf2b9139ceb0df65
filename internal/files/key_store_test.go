package files

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/qrforge/internal/crypto"
)

func TestWriteThenReadMasterKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultMasterKeyFile)

	key, err := WriteMasterKey(path, false)
	require.NoError(t, err)
	assert.Len(t, key, crypto.MasterKeySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := ReadMasterKey("", path)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = WriteMasterKey(path, false)
	assert.Error(t, err, "must refuse to overwrite")

	again, err := WriteMasterKey(path, true)
	require.NoError(t, err)
	assert.NotEqual(t, key, again)
}

func TestReadMasterKeyHexWins(t *testing.T) {
	key := crypto.MustRandom(crypto.MasterKeySize)
	got, err := ReadMasterKey("  "+hex.EncodeToString(key)+"\n", "/does/not/exist")
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestReadMasterKeyErrors(t *testing.T) {
	_, err := ReadMasterKey("", "")
	assert.ErrorIs(t, err, ErrNoMasterKey)

	_, err = ReadMasterKey("", filepath.Join(t.TempDir(), "missing.key"))
	assert.ErrorIs(t, err, ErrNoMasterKey)

	_, err = ReadMasterKey("zz", "")
	assert.Error(t, err)

	_, err = ReadMasterKey(strings.Repeat("ab", 8), "")
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
}
