package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/toastq/internal/data/db"
)

func TestIsCorruptionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"malformed", errors.New("database disk image is malformed"), true},
		{"not a database", fmt.Errorf("migrate: %w", errors.New("file is not a database")), true},
		{"other", errors.New("no such table: notifications"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorruptionError(tt.err))
		})
	}
}

func TestIsCorruptionError_unopenable_path(t *testing.T) {
	// A regular file where the data directory should be makes sqlite fail with
	// SQLITE_CANTOPEN, which must not send the caller into recovery.
	notADir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	_, err := db.Open(notADir, db.DefaultOpenOptions())
	require.Error(t, err)
	assert.False(t, IsCorruptionError(err))
}

func TestIsBusyError_plain_error(t *testing.T) {
	assert.False(t, IsBusyError(errors.New("database is locked")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	require.NoError(t, RecoverFromCorruption(dir))

	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dbPath + "-wal")
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), db.FileName+".corrupt.") {
			backups++
		}
	}
	assert.Equal(t, 2, backups)

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	assert.NoError(t, database.Close())
}

func TestRecoverFromCorruption_missing_file(t *testing.T) {
	assert.NoError(t, RecoverFromCorruption(t.TempDir()))
}
