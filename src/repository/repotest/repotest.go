// Package repotest holds helpers for tests that need a working store, and a
// contract suite every store implementation must pass.
package repotest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/repository"
	"github.com/theleywin/friendlynk/src/repository/sqlstore"
)

var dbSeq atomic.Int64

// SQLite returns a repository on a fresh in-memory database that is closed
// when the test ends.
func SQLite(t testing.TB) *repository.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:friendlynk_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := lib.ConnectSQLite(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("ConnectSQLite() error = %v", err)
	}
	if err := sqlstore.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}

	repo := sqlstore.New(db, zap.NewNop())
	t.Cleanup(func() {
		_ = repo.Close(context.Background())
	})
	return repo
}
