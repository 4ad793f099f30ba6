package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/andrebq/blogbox/internal/sqlitedb"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireDatabase opens a fresh sqlite database inside a temp directory,
// the returned func closes it and removes the directory.
func AcquireDatabase(ctx context.Context, t TestLog, name string) (*sql.DB, func()) {
	dir, err := os.MkdirTemp("", "blogbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	db, err := sqlitedb.Open(ctx, filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return db, func() {
		err := db.Close()
		if err != nil {
			t.Log("unable to close database", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireDatabasePath returns a path to a database file that does not exist yet.
func AcquireDatabasePath(t TestLog, name string) (string, func()) {
	dir, err := os.MkdirTemp("", "blogbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, name), func() {
		err := os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
