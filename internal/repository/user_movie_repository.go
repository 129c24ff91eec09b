package repository

import (
	"context"
	"database/sql"
	"errors"

	"moviweb/internal/model"
)

// UserMovieRepo provides persistence for the `user_movies` linking
// table. Every mutation that can change a movie's reference count runs
// inside a collection-store transaction, hence the Tx variants.
type UserMovieRepo struct{ DB *sql.DB }

func NewUserMovieRepo(db *sql.DB) *UserMovieRepo { return &UserMovieRepo{DB: db} }

// GetLink fetches the ownership link for a (user, movie) pair. Absence
// is reported through the boolean, not as an error.
func (r *UserMovieRepo) GetLink(ctx context.Context, userID, movieID uint64) (model.UserMovie, bool, error) {
	return scanLink(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, movie_id, user_rating FROM user_movies WHERE user_id=? AND movie_id=? LIMIT 1",
		userID, movieID))
}

// GetLinkTx is GetLink within an existing transaction.
func (r *UserMovieRepo) GetLinkTx(ctx context.Context, tx *sql.Tx, userID, movieID uint64) (model.UserMovie, bool, error) {
	return scanLink(tx.QueryRowContext(ctx,
		"SELECT id, user_id, movie_id, user_rating FROM user_movies WHERE user_id=? AND movie_id=? LIMIT 1",
		userID, movieID))
}

func scanLink(row *sql.Row) (model.UserMovie, bool, error) {
	var link model.UserMovie
	var rating sql.NullFloat64
	err := row.Scan(&link.ID, &link.UserID, &link.MovieID, &rating)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserMovie{}, false, nil
	}
	if err != nil {
		return model.UserMovie{}, false, err
	}
	if rating.Valid {
		v := rating.Float64
		link.UserRating = &v
	}
	return link, true, nil
}

// CreateTx inserts an ownership link within a transaction and populates
// the generated id. A duplicate-key error is returned as-is so the
// caller can treat it as "already linked" and re-read.
func (r *UserMovieRepo) CreateTx(ctx context.Context, tx *sql.Tx, link *model.UserMovie) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO user_movies (user_id, movie_id, user_rating) VALUES (?,?,?)",
		link.UserID, link.MovieID, link.UserRating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = uint64(id)
	return nil
}

// DeleteTx removes the link for a (user, movie) pair within a
// transaction. The boolean reports whether a row was actually removed.
func (r *UserMovieRepo) DeleteTx(ctx context.Context, tx *sql.Tx, userID, movieID uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM user_movies WHERE user_id=? AND movie_id=?", userID, movieID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByUserTx removes all of a user's links within a transaction.
func (r *UserMovieRepo) DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM user_movies WHERE user_id=?", userID)
	return err
}

// MovieIDsByUserTx returns the ids of every movie the user links to,
// within a transaction. Used by the delete-user cascade to recount
// references after the user's links are gone.
func (r *UserMovieRepo) MovieIDsByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT movie_id FROM user_movies WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByMovieTx returns the number of ownership links referencing a
// movie, within a transaction.
func (r *UserMovieRepo) CountByMovieTx(ctx context.Context, tx *sql.Tx, movieID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_movies WHERE movie_id=?", movieID).Scan(&n)
	return n, err
}

// UpdateRating overwrites the per-user rating on an existing link. The
// caller verifies the link exists first; a no-op update (same value) is
// indistinguishable from one that changed the row and both succeed.
func (r *UserMovieRepo) UpdateRating(ctx context.Context, userID, movieID uint64, rating float64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_movies SET user_rating=? WHERE user_id=? AND movie_id=?",
		rating, userID, movieID)
	return err
}

// ListDetailsByUser returns the join of a user's linked movies with the
// per-user rating from each link, ordered by movie id. User existence
// is not validated here; an unknown user simply yields an empty slice.
func (r *UserMovieRepo) ListDetailsByUser(ctx context.Context, userID uint64) ([]model.UserMovieDetail, error) {
	const q = `SELECT m.id, m.title, m.release_year, m.poster, m.director, m.rating, um.user_rating
	           FROM movie m
	           JOIN user_movies um ON um.movie_id = m.id
	           WHERE um.user_id = ?
	           ORDER BY m.id`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]model.UserMovieDetail, 0)
	for rows.Next() {
		var d model.UserMovieDetail
		var year sql.NullInt64
		var poster, director sql.NullString
		var userRating sql.NullFloat64
		if err := rows.Scan(&d.ID, &d.Title, &year, &poster, &director, &d.Rating, &userRating); err != nil {
			return nil, err
		}
		if year.Valid {
			y := int(year.Int64)
			d.ReleaseYear = &y
		}
		if poster.Valid {
			p := poster.String
			d.Poster = &p
		}
		if director.Valid {
			dir := director.String
			d.Director = &dir
		}
		if userRating.Valid {
			v := userRating.Float64
			d.UserRating = &v
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
