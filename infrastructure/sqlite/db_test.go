package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDBRequiresPath(t *testing.T) {
	if _, err := OpenDB(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestApplyEmbeddedMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := ApplyMigrations(ctx, db, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// Re-applying is a no-op thanks to IF NOT EXISTS.
	if err := ApplyMigrations(ctx, db, ""); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	for _, table := range []string{"usuarios", "sessions", "clientes", "pedidos", "fichas_tecnicas", "avances_por_area", "audit_logs"} {
		var name string
		err := db.ReadSQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestReadHandleRejectsWrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO clientes (nombre, email) VALUES ('x', 'x@test.local')`)
		return err
	})
	if err == nil {
		t.Fatal("expected write through read handle to fail")
	}
}

func TestWriteTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	wantErr := context.Canceled
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO clientes (nombre, email) VALUES ('x', 'x@test.local')`); err != nil {
			return err
		}
		return wantErr
	})
	if err == nil {
		t.Fatal("expected error from tx fn")
	}

	var count int
	if err := db.ReadSQL.QueryRow(`SELECT COUNT(*) FROM clientes`).Scan(&count); err != nil {
		t.Fatalf("count clientes: %v", err)
	}
	if count != 0 {
		t.Fatalf("clientes = %d, want 0 after rollback", count)
	}
}
