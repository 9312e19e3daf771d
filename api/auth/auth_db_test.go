package auth

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"fichaflow/infrastructure/sqlite"
	"fichaflow/models"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.ApplyMigrations(context.Background(), db, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

const testPassword = "Planta2024!Segura"

func seedUser(t *testing.T, db *sqlite.DB, email string) models.User {
	t.Helper()
	ctx := context.Background()
	if err := UpsertUser(ctx, db, "Usuario Test", email, "jefe_produccion", "", testPassword); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var e error
		user, e = findActiveUserByEmail(ctx, tx, email)
		return e
	})
	if err != nil {
		t.Fatalf("load seeded user: %v", err)
	}
	return user
}

func TestAuthenticateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "jefe@test.local")

	user, err := authenticateUser(ctx, db, "jefe@test.local", testPassword)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "jefe@test.local" {
		t.Errorf("email = %q", user.Email)
	}

	// Case-insensitive email lookup.
	if _, err := authenticateUser(ctx, db, "JEFE@test.local", testPassword); err != nil {
		t.Errorf("uppercase email authenticate: %v", err)
	}

	// Wrong password and unknown user are indistinguishable.
	if _, err := authenticateUser(ctx, db, "jefe@test.local", "MalaClave123!"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("wrong password err = %v, want sql.ErrNoRows", err)
	}
	if _, err := authenticateUser(ctx, db, "nadie@test.local", testPassword); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("unknown user err = %v, want sql.ErrNoRows", err)
	}
}

func TestUpsertUserEnforcesPasswordPolicy(t *testing.T) {
	db := setupTestDB(t)
	if err := UpsertUser(context.Background(), db, "X", "x@test.local", "jefe_produccion", "", "corta1!"); err == nil {
		t.Fatal("expected policy error for short password")
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "jefe@test.local")

	token := newSessionToken()
	session := models.Session{ID: token, UserID: user.ID, ExpiresAt: time.Now().Add(SessionTTL)}
	if err := persistSession(ctx, db, session); err != nil {
		t.Fatalf("persist session: %v", err)
	}

	loaded, err := LoadSessionByToken(ctx, db, token)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if loaded.User.Email != user.Email {
		t.Errorf("session user = %q, want %q", loaded.User.Email, user.Email)
	}

	if err := DeleteSessionByToken(ctx, db, token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := LoadSessionByToken(ctx, db, token); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("deleted session err = %v, want sql.ErrNoRows", err)
	}
}

func TestLoadSessionByTokenExpired(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "jefe@test.local")

	token := newSessionToken()
	expired := models.Session{ID: token, UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := persistSession(ctx, db, expired); err != nil {
		t.Fatalf("persist session: %v", err)
	}

	if _, err := LoadSessionByToken(ctx, db, token); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expired session err = %v, want sql.ErrNoRows", err)
	}

	// Expired sessions are purged on lookup.
	var count int
	if err := db.ReadSQL.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, token).Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 0 {
		t.Errorf("expired session still stored")
	}
}

func TestLoadSessionByTokenInactiveUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "jefe@test.local")

	token := newSessionToken()
	if err := persistSession(ctx, db, models.Session{ID: token, UserID: user.ID, ExpiresAt: time.Now().Add(SessionTTL)}); err != nil {
		t.Fatalf("persist session: %v", err)
	}

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE usuarios SET activo = 0 WHERE id = ?`, user.ID)
		return err
	})
	if err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	if _, err := LoadSessionByToken(ctx, db, token); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("inactive user session err = %v, want sql.ErrNoRows", err)
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"Planta2024!Segura", false},
		{"corta1!A", true},
		{"sinmayusculas2024!", true},
		{"SINMINUSCULAS2024!", true},
		{"SinNumerosAqui!!", true},
		{"SinSimbolos20244", true},
	}
	for _, tc := range cases {
		err := ValidatePasswordPolicy(tc.password)
		if tc.wantErr && err == nil {
			t.Errorf("password %q: expected error", tc.password)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("password %q: unexpected error %v", tc.password, err)
		}
	}
}
