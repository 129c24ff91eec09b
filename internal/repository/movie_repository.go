package repository

import (
	"context"
	"database/sql"
	"errors"

	"moviweb/internal/model"
)

// MovieRepo provides persistence for rows in the `movie` table. Movies
// are shared between users; creation and deletion only ever happen
// inside the collection store's transactions, which is why the mutating
// methods take a *sql.Tx.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = "id, title, release_year, poster, director, rating"

// scanMovie reads one movie row from a row scanner.
func scanMovie(row *sql.Row) (model.Movie, error) {
	var m model.Movie
	var year sql.NullInt64
	var poster, director sql.NullString
	err := row.Scan(&m.ID, &m.Title, &year, &poster, &director, &m.Rating)
	if err != nil {
		return model.Movie{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		m.ReleaseYear = &y
	}
	if poster.Valid {
		p := poster.String
		m.Poster = &p
	}
	if director.Valid {
		d := director.String
		m.Director = &d
	}
	return m, nil
}

// GetByID fetches a movie by id. Returns ErrMovieNotFound when no such
// row exists.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movie WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}

// GetByIDTx is GetByID within an existing transaction. Reads that
// happen while a store transaction is open must go through it; with the
// embedded sqlite driver the transaction holds the only connection.
func (r *MovieRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Movie, error) {
	m, err := scanMovie(tx.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movie WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}

// List returns all movies ordered by id; empty slice when none exist.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM movie ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		var year sql.NullInt64
		var poster, director sql.NullString
		if err := rows.Scan(&m.ID, &m.Title, &year, &poster, &director, &m.Rating); err != nil {
			return nil, err
		}
		if year.Valid {
			y := int(year.Int64)
			m.ReleaseYear = &y
		}
		if poster.Valid {
			p := poster.String
			m.Poster = &p
		}
		if director.Valid {
			d := director.String
			m.Director = &d
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetByTitleYearTx looks a movie up by its dedup key (title,
// release_year) within a transaction. A nil year matches rows whose
// release_year is NULL. Absence is reported through the boolean.
func (r *MovieRepo) GetByTitleYearTx(ctx context.Context, tx *sql.Tx, title string, year *int) (model.Movie, bool, error) {
	var row *sql.Row
	if year == nil {
		row = tx.QueryRowContext(ctx,
			"SELECT "+movieColumns+" FROM movie WHERE title=? AND release_year IS NULL LIMIT 1", title)
	} else {
		row = tx.QueryRowContext(ctx,
			"SELECT "+movieColumns+" FROM movie WHERE title=? AND release_year=? LIMIT 1", title, *year)
	}
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, false, nil
	}
	if err != nil {
		return model.Movie{}, false, err
	}
	return m, true, nil
}

// CreateTx inserts a movie within a transaction and populates the
// generated id. A duplicate-key error is returned as-is so the caller
// can treat it as "someone else created it" and re-read.
func (r *MovieRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO movie (title, release_year, poster, director, rating) VALUES (?,?,?,?,?)",
		m.Title, m.ReleaseYear, m.Poster, m.Director, m.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// DeleteTx removes a movie row within a transaction. Callers invoke it
// only after verifying that no ownership links remain.
func (r *MovieRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM movie WHERE id=?", id)
	return err
}
