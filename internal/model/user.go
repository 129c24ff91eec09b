package model

// User represents an application user record as stored in the
// `user` table. Users own movie collections through rows in the
// `user_movies` linking table. Names are unique across all users;
// the unique key on user.name backs that policy at the database
// level, while the 2–20 character length rule is enforced at the
// handler layer.
//
// Fields:
//  ID   – primary key identifier of the user.
//  Name – display name, unique across all users.
type User struct {
	ID   uint64 `json:"id"`   // user.id
	Name string `json:"name"` // user.name
}
