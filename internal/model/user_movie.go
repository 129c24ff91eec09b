package model

// UserMovie models an entry in the `user_movies` linking table: the
// ownership link between a user and a movie. At most one link exists
// per (user_id, movie_id) pair; the unique key on those columns backs
// the invariant and the store treats a duplicate-key insert as
// "already linked" rather than an error.
//
// Fields:
//  ID         – primary key identifier of the link.
//  UserID     – owner of the link.
//  MovieID    – linked movie.
//  UserRating – the user's personal rating. Nil when the user has not
//               rated the movie and the catalog rating was not
//               numeric at link time.
type UserMovie struct {
	ID         uint64   `json:"id"`          // user_movies.id
	UserID     uint64   `json:"user_id"`     // user_movies.user_id
	MovieID    uint64   `json:"movie_id"`    // user_movies.movie_id
	UserRating *float64 `json:"user_rating"` // user_movies.user_rating (nullable)
}

// UserMovieDetail combines a movie row with the per-user rating from
// the ownership link. It is what a user's collection listing returns.
type UserMovieDetail struct {
	Movie
	UserRating *float64 `json:"user_rating"`
}
