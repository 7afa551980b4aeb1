package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hay-kot/toastq/internal/data/db"
)

var corruptionMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

// IsBusyError reports whether err is SQLITE_BUSY.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_BUSY
}

// IsCorruptionError reports whether err means the database file is unusable.
// SQLITE_CANTOPEN is a path or permission problem and does not qualify.
func IsCorruptionError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return true
		}
	}

	msg := err.Error()
	for _, s := range corruptionMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// RecoverFromCorruption moves the history database and its WAL and SHM
// sidecars aside so the next db.Open starts from an empty file. The sidecars
// must go too or sqlite replays them into the fresh database.
func RecoverFromCorruption(dataDir string) error {
	dbPath := filepath.Join(dataDir, db.FileName)
	backup := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	for _, suffix := range []string{"", "-wal", "-shm"} {
		src := dbPath + suffix
		err := os.Rename(src, backup+suffix)
		if err == nil || os.IsNotExist(err) {
			continue
		}

		if suffix == "" {
			return fmt.Errorf("backup corrupted database: %w", err)
		}
		if delErr := os.Remove(src); delErr != nil && !os.IsNotExist(delErr) {
			return fmt.Errorf("backup or remove %s: %w", filepath.Base(src), err)
		}
	}

	return nil
}
