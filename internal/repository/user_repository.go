package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"moviweb/internal/model"
)

// UserRepo provides persistence for rows in the `user` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns the stored record. The name is
// trimmed first; an empty result is rejected with ErrInvalidName and a
// collision with an existing name returns ErrNameExists.
func (r *UserRepo) Create(ctx context.Context, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, ErrInvalidName
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO user (name) VALUES (?)", name)
	if err != nil {
		if IsDuplicate(err) {
			return model.User{}, ErrNameExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: uint64(id), Name: name}, nil
}

// GetByID fetches a user by id. Returns ErrUserNotFound when no such
// row exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM user WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByIDTx is GetByID within an existing transaction.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.User, error) {
	var u model.User
	err := tx.QueryRowContext(ctx,
		"SELECT id, name FROM user WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByName fetches a user by exact, case-sensitive name match. A
// missing user is reported through the boolean, not as an error, so
// callers can use this to check name availability.
func (r *UserRepo) GetByName(ctx context.Context, name string) (model.User, bool, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM user WHERE name=? LIMIT 1", name).
		Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	return u, true, nil
}

// List returns all users ordered by id. When none exist the slice is
// empty, never nil.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM user ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Rename updates a user's name. Returns ErrUserNotFound when the id
// does not exist, ErrInvalidName for an empty name and ErrNameExists
// when the new name belongs to another user.
func (r *UserRepo) Rename(ctx context.Context, id uint64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidName
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user SET name=? WHERE id=?", newName, id)
	if err != nil {
		if IsDuplicate(err) {
			return ErrNameExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the user is gone or the name is unchanged; only the
		// former is an error.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTx removes the user row within an existing transaction. The
// caller is responsible for having removed the user's ownership links
// and any orphaned movies first.
func (r *UserRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM user WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
