package model

// Movie represents a row in the `movie` table. A movie is a shared,
// deduplicated resource: any number of users may link to the same
// row, and the pair (title, release_year) acts as the natural key
// when adding. A movie only exists while at least one user links to
// it; the collection store deletes a movie together with its last
// link.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title as resolved by the catalog.
//  ReleaseYear – release year (nil when the catalog gave none).
//  Poster      – poster URL (nil when unavailable).
//  Director    – director name (nil when unavailable).
//  Rating      – the catalog's global rating (IMDB-style score).
//                Distinct from the per-user rating stored on the
//                ownership link.
type Movie struct {
	ID          uint64  `json:"id"`           // movie.id
	Title       string  `json:"title"`        // movie.title
	ReleaseYear *int    `json:"release_year"` // movie.release_year (nullable)
	Poster      *string `json:"poster"`       // movie.poster (nullable)
	Director    *string `json:"director"`     // movie.director (nullable)
	Rating      float64 `json:"rating"`       // movie.rating
}
