// Package queue defines message payloads exchanged over the message broker.
package queue

// FavoriteAddedEvent is published when a movie is successfully added to
// a user's collection (outcome "added", not "linked"). It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type FavoriteAddedEvent struct {
	UserID      uint64   `json:"user_id"`
	UserName    string   `json:"user_name"`
	MovieID     uint64   `json:"movie_id"`
	MovieTitle  string   `json:"movie_title"`
	ReleaseYear *int     `json:"release_year,omitempty"`
	UserRating  *float64 `json:"user_rating,omitempty"`
	AddedAt     string   `json:"added_at"`
}
