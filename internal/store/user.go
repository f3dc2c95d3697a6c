package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const userColumns = `id, username, email, password, full_name, address, contact_number,
	profile_photo, reset_token, reset_expires, created_at`

// CreateUser inserts u and sets its ID. Returns ErrDuplicate when the
// username or email is taken.
func (db *DB) CreateUser(u *User) error {
	u.CreatedAt = time.Now().UnixMilli()
	res, err := db.Exec(`
		INSERT INTO users (username, email, password, created_at)
		VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.Password, u.CreatedAt)
	if err != nil {
		return mapConstraint(err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

// UserByUsername looks up a user by exact username.
func (db *DB) UserByUsername(username string) (*User, error) {
	return db.scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// UserByEmail looks up a user by email, ignoring case.
func (db *DB) UserByEmail(email string) (*User, error) {
	return db.scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
}

// UserByID looks up a user by primary key.
func (db *DB) UserByID(id int64) (*User, error) {
	return db.scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (db *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FullName, &u.Address,
		&u.ContactNumber, &u.ProfilePhoto, &u.ResetToken, &u.ResetExpires, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateProfile overwrites the editable profile fields. passwordHash is
// only written when non-empty.
func (db *DB) UpdateProfile(u *User, passwordHash string) error {
	q := `UPDATE users SET full_name = ?, email = ?, address = ?, contact_number = ?`
	args := []any{u.FullName, u.Email, u.Address, u.ContactNumber}
	if passwordHash != "" {
		q += `, password = ?`
		args = append(args, passwordHash)
	}
	q += ` WHERE id = ?`
	args = append(args, u.ID)

	res, err := db.Exec(q, args...)
	if err != nil {
		return mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken stores a password-reset token for the user with email.
func (db *DB) SetResetToken(email, token string, expires time.Time) error {
	res, err := db.Exec(`UPDATE users SET reset_token = ?, reset_expires = ? WHERE email = ? COLLATE NOCASE`,
		token, expires.UnixMilli(), email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapConstraint(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", ErrDuplicate, strings.TrimPrefix(se.Error(), "UNIQUE constraint failed: "))
	}
	return err
}
