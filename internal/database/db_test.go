package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := EnsureSchema(ctx, db, "sqlite"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := EnsureSchema(ctx, db, "sqlite"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if err := EnsureSchema(ctx, db, "postgres"); err == nil {
		t.Fatal("unknown driver accepted")
	}
}

func TestSchemaUniqueKeys(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := EnsureSchema(ctx, db, "sqlite"); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO user (name) VALUES ('Alice')"); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	_, err := db.ExecContext(ctx, "INSERT INTO user (name) VALUES ('Alice')")
	if err == nil || !strings.Contains(err.Error(), "UNIQUE") {
		t.Fatalf("duplicate name err = %v, want unique violation", err)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO movie (title, release_year, rating) VALUES ('The Matrix', 1999, 8.7)"); err != nil {
		t.Fatalf("insert movie: %v", err)
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO movie (title, release_year, rating) VALUES ('The Matrix', 1999, 8.7)")
	if err == nil || !strings.Contains(err.Error(), "UNIQUE") {
		t.Fatalf("duplicate movie err = %v, want unique violation", err)
	}
	// Same title with a different year is a different movie.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO movie (title, release_year, rating) VALUES ('The Matrix', 2021, 5.7)"); err != nil {
		t.Fatalf("insert remake: %v", err)
	}

	// The dedup key must bind for year-less titles too; a plain unique
	// key would admit any number of NULL years.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO movie (title, release_year, rating) VALUES ('Undated', NULL, 0)"); err != nil {
		t.Fatalf("insert year-less movie: %v", err)
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO movie (title, release_year, rating) VALUES ('Undated', NULL, 0)")
	if err == nil || !strings.Contains(err.Error(), "UNIQUE") {
		t.Fatalf("duplicate year-less movie err = %v, want unique violation", err)
	}
}

func TestForeignKeyCascade(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := EnsureSchema(ctx, db, "sqlite"); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	mustExec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	mustExec("INSERT INTO user (name) VALUES ('Alice')")
	mustExec("INSERT INTO movie (title, release_year, rating) VALUES ('The Matrix', 1999, 8.7)")
	mustExec("INSERT INTO user_movies (user_id, movie_id) VALUES (1, 1)")

	// The FK cascade is a safety net underneath the store's explicit
	// cleanup; a raw user delete must still take the links with it.
	mustExec("DELETE FROM user WHERE id = 1")
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM user_movies").Scan(&n); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if n != 0 {
		t.Fatalf("links after user delete = %d, want 0", n)
	}
}
