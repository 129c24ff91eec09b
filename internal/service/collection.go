// Package service holds the collection store and the external service
// clients. The collection store is the sole owner of persisted
// user/movie/link state: every mutation goes through it and it
// guarantees the dedup and cascade invariants of the data model.
package service

import (
	"context"
	"database/sql"

	"moviweb/internal/model"
	"moviweb/internal/repository"
)

// MovieData is the normalized result of a catalog lookup. Optional
// fields are nil when the catalog had nothing usable; Rating is nil
// when the catalog rating did not parse as a number.
type MovieData struct {
	Title       string
	Director    *string
	Poster      *string
	ReleaseYear *int
	Rating      *float64
}

// CatalogClient resolves a title to movie metadata. Implementations
// collapse transport failures, malformed responses and explicit
// not-found answers uniformly into a nil result with a nil error.
type CatalogClient interface {
	Fetch(ctx context.Context, title string) (*MovieData, error)
}

// AddOutcome classifies the result of AddMovieToUser.
type AddOutcome string

const (
	// OutcomeAdded means a new ownership link was created (and possibly
	// a new movie row).
	OutcomeAdded AddOutcome = "added"
	// OutcomeLinked means the link already existed; nothing changed.
	OutcomeLinked AddOutcome = "linked"
	// OutcomeNotFound means the catalog could not resolve the title.
	OutcomeNotFound AddOutcome = "not_found"
)

// AddResult carries the outcome of AddMovieToUser together with the
// movie involved (nil for OutcomeNotFound) and the ownership link's
// per-user rating as it stands after the call.
type AddResult struct {
	Outcome    AddOutcome
	Movie      *model.Movie
	UserRating *float64
}

// Collection is the collection store. It owns the transactions that
// keep two invariants intact: at most one ownership link per
// (user, movie) pair, and no movie row without at least one link.
type Collection struct {
	db      *sql.DB
	users   *repository.UserRepo
	movies  *repository.MovieRepo
	links   *repository.UserMovieRepo
	catalog CatalogClient
}

// NewCollection constructs the store and panics if any dependency is nil.
func NewCollection(db *sql.DB, users *repository.UserRepo, movies *repository.MovieRepo, links *repository.UserMovieRepo, catalog CatalogClient) *Collection {
	if db == nil || users == nil || movies == nil || links == nil || catalog == nil {
		panic("nil dependency passed to NewCollection")
	}
	return &Collection{db: db, users: users, movies: movies, links: links, catalog: catalog}
}

// ListUsers returns all users; an empty slice when none exist.
func (c *Collection) ListUsers(ctx context.Context) ([]model.User, error) {
	return c.users.List(ctx)
}

// ListMovies returns all movies; an empty slice when none exist.
func (c *Collection) ListMovies(ctx context.Context) ([]model.Movie, error) {
	return c.movies.List(ctx)
}

// GetUser fetches a user by id; repository.ErrUserNotFound when absent.
func (c *Collection) GetUser(ctx context.Context, id uint64) (model.User, error) {
	return c.users.GetByID(ctx, id)
}

// GetUserByName fetches a user by exact name; absence is reported
// through the boolean so callers can probe name availability.
func (c *Collection) GetUserByName(ctx context.Context, name string) (model.User, bool, error) {
	return c.users.GetByName(ctx, name)
}

// AddUser creates a user. Empty names fail with ErrInvalidName,
// duplicates with ErrNameExists. Length policy beyond non-emptiness is
// the handler's concern.
func (c *Collection) AddUser(ctx context.Context, name string) (model.User, error) {
	return c.users.Create(ctx, name)
}

// RenameUser changes a user's name; ErrUserNotFound when the id is
// unknown.
func (c *Collection) RenameUser(ctx context.Context, id uint64, newName string) error {
	return c.users.Rename(ctx, id, newName)
}

// GetMovie fetches a movie by id; repository.ErrMovieNotFound when
// absent.
func (c *Collection) GetMovie(ctx context.Context, id uint64) (model.Movie, error) {
	return c.movies.GetByID(ctx, id)
}

// GetUserMovies returns the user's collection: each linked movie joined
// with the per-user rating. User existence is not re-validated here.
func (c *Collection) GetUserMovies(ctx context.Context, userID uint64) ([]model.UserMovieDetail, error) {
	return c.links.ListDetailsByUser(ctx, userID)
}

// GetUserMovieRating returns the user's personal rating for a movie.
// linked is false when no ownership link exists; rating is nil when the
// link exists but carries no rating.
func (c *Collection) GetUserMovieRating(ctx context.Context, userID, movieID uint64) (rating *float64, linked bool, err error) {
	link, ok, err := c.links.GetLink(ctx, userID, movieID)
	if err != nil || !ok {
		return nil, false, err
	}
	return link.UserRating, true, nil
}

// AddMovieToUser resolves title through the catalog, then links the
// resulting movie to the user. The movie row is deduplicated on
// (title, release_year): the first request for a given key creates the
// row, every later one reuses it. Catalog failures of any kind come
// back as OutcomeNotFound, an existing link as OutcomeLinked. Creation
// races on either unique key are resolved by re-reading instead of
// failing.
func (c *Collection) AddMovieToUser(ctx context.Context, userID uint64, title string) (AddResult, error) {
	data, err := c.catalog.Fetch(ctx, title)
	if err != nil || data == nil {
		// UpstreamUnavailable and "no such movie" are indistinguishable
		// by contract.
		return AddResult{Outcome: OutcomeNotFound}, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return AddResult{}, err
	}
	defer tx.Rollback()

	movie, found, err := c.movies.GetByTitleYearTx(ctx, tx, data.Title, data.ReleaseYear)
	if err != nil {
		return AddResult{}, err
	}
	if !found {
		movie = model.Movie{
			Title:       data.Title,
			ReleaseYear: data.ReleaseYear,
			Poster:      data.Poster,
			Director:    data.Director,
		}
		if data.Rating != nil {
			movie.Rating = *data.Rating
		}
		if createErr := c.movies.CreateTx(ctx, tx, &movie); createErr != nil {
			if !repository.IsDuplicate(createErr) {
				return AddResult{}, createErr
			}
			// Lost the creation race; the row exists now.
			movie, found, err = c.movies.GetByTitleYearTx(ctx, tx, data.Title, data.ReleaseYear)
			if err != nil {
				return AddResult{}, err
			}
			if !found {
				return AddResult{}, createErr
			}
		}
	}

	if existing, linked, err := c.links.GetLinkTx(ctx, tx, userID, movie.ID); err != nil {
		return AddResult{}, err
	} else if linked {
		if err := tx.Commit(); err != nil {
			return AddResult{}, err
		}
		return AddResult{Outcome: OutcomeLinked, Movie: &movie, UserRating: existing.UserRating}, nil
	}

	link := model.UserMovie{
		UserID:     userID,
		MovieID:    movie.ID,
		UserRating: data.Rating, // seeded from the catalog rating when numeric
	}
	if err := c.links.CreateTx(ctx, tx, &link); err != nil {
		if repository.IsDuplicate(err) {
			// Lost the linking race; report the link the winner created.
			existing, _, readErr := c.links.GetLinkTx(ctx, tx, userID, movie.ID)
			if readErr != nil {
				return AddResult{}, readErr
			}
			if err := tx.Commit(); err != nil {
				return AddResult{}, err
			}
			return AddResult{Outcome: OutcomeLinked, Movie: &movie, UserRating: existing.UserRating}, nil
		}
		return AddResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return AddResult{}, err
	}
	return AddResult{Outcome: OutcomeAdded, Movie: &movie, UserRating: link.UserRating}, nil
}

// RemoveMovieFromUser deletes the user's ownership link and, when that
// was the movie's last link, the movie itself, in one transaction. The
// returned movie is its pre-delete state; nil means there was no such
// movie or no such link and nothing changed.
func (c *Collection) RemoveMovieFromUser(ctx context.Context, userID, movieID uint64) (*model.Movie, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	movie, err := c.movies.GetByIDTx(ctx, tx, movieID)
	if err == repository.ErrMovieNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	removed, err := c.links.DeleteTx(ctx, tx, userID, movieID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, nil
	}
	remaining, err := c.links.CountByMovieTx(ctx, tx, movieID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		if err := c.movies.DeleteTx(ctx, tx, movieID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &movie, nil
}

// DeleteUser removes a user, all of their ownership links and every
// movie left with zero links, atomically. Returns the deleted user's
// name; ErrUserNotFound when the id is unknown.
func (c *Collection) DeleteUser(ctx context.Context, id uint64) (string, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	user, err := c.users.GetByIDTx(ctx, tx, id)
	if err != nil {
		return "", err
	}
	movieIDs, err := c.links.MovieIDsByUserTx(ctx, tx, id)
	if err != nil {
		return "", err
	}
	if err := c.links.DeleteByUserTx(ctx, tx, id); err != nil {
		return "", err
	}
	for _, movieID := range movieIDs {
		remaining, err := c.links.CountByMovieTx(ctx, tx, movieID)
		if err != nil {
			return "", err
		}
		if remaining == 0 {
			if err := c.movies.DeleteTx(ctx, tx, movieID); err != nil {
				return "", err
			}
		}
	}
	if err := c.users.DeleteTx(ctx, tx, id); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return user.Name, nil
}

// UpdateUserMovieRating overwrites the per-user rating on the ownership
// link for (userID, movieID). A nil rating leaves the stored value
// untouched. The movie's catalog-level rating is never modified here.
// Fails with ErrMovieNotFound or ErrLinkNotFound.
func (c *Collection) UpdateUserMovieRating(ctx context.Context, movieID, userID uint64, rating *float64) error {
	if _, err := c.movies.GetByID(ctx, movieID); err != nil {
		return err
	}
	_, linked, err := c.links.GetLink(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if !linked {
		return repository.ErrLinkNotFound
	}
	if rating == nil {
		return nil
	}
	return c.links.UpdateRating(ctx, userID, movieID, *rating)
}
