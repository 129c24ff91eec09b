package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens the embedded single-file database at path and verifies
// the connection. ":memory:" is accepted for tests. Foreign keys are
// switched on per connection and a busy timeout covers the low level of
// write contention this deployment sees.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// The driver serializes writes anyway; a single connection avoids
	// SQLITE_BUSY churn between pooled connections.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// sqliteSchema and mysqlSchema create the three application tables. The
// unique keys on user.name, movie(title, release_year) and
// user_movies(user_id, movie_id) back the store's dedup invariants; the
// FK cascades are a safety net only, orphan-movie cleanup is enforced
// explicitly by the store. The movie key is an expression index over
// COALESCE(release_year, 0) because a plain unique key permits repeated
// NULLs, which would leave year-less titles without a race backstop.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS user (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS movie (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		release_year INTEGER,
		poster TEXT,
		director TEXT,
		rating REAL NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_movie_title_year
		ON movie (title, COALESCE(release_year, 0))`,
	`CREATE TABLE IF NOT EXISTS user_movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES user(id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movie(id) ON DELETE CASCADE,
		user_rating REAL,
		UNIQUE (user_id, movie_id)
	)`,
}

var mysqlSchema = []string{
	"CREATE TABLE IF NOT EXISTS `user` (" +
		"id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT," +
		"name VARCHAR(255) NOT NULL," +
		"PRIMARY KEY (id)," +
		"UNIQUE KEY uq_user_name (name)" +
		") ENGINE=InnoDB",
	"CREATE TABLE IF NOT EXISTS movie (" +
		"id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT," +
		"title VARCHAR(255) NOT NULL," +
		"release_year INT NULL," +
		"poster TEXT NULL," +
		"director VARCHAR(255) NULL," +
		"rating DOUBLE NOT NULL," +
		"PRIMARY KEY (id)," +
		"UNIQUE KEY uq_movie_title_year (title, (COALESCE(release_year, 0)))" +
		") ENGINE=InnoDB",
	"CREATE TABLE IF NOT EXISTS user_movies (" +
		"id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT," +
		"user_id BIGINT UNSIGNED NOT NULL," +
		"movie_id BIGINT UNSIGNED NOT NULL," +
		"user_rating DOUBLE NULL," +
		"PRIMARY KEY (id)," +
		"UNIQUE KEY uq_user_movie (user_id, movie_id)," +
		"CONSTRAINT fk_um_user FOREIGN KEY (user_id) REFERENCES `user`(id) ON DELETE CASCADE," +
		"CONSTRAINT fk_um_movie FOREIGN KEY (movie_id) REFERENCES movie(id) ON DELETE CASCADE" +
		") ENGINE=InnoDB",
}

// EnsureSchema creates the application tables when they do not exist yet.
// driver must be "mysql" or "sqlite".
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case "mysql":
		stmts = mysqlSchema
	case "sqlite":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
