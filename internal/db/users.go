package db

import (
	"database/sql"
	"errors"

	"github.com/Zoja7431/task-manage/internal/models"
)

const userColumns = "id, username, email, password_hash, avatar, created_at"

func scanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	u := &models.User{}
	err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser registers a new account. A unique violation on username or
// email surfaces as ErrUserExists.
func (db *DB) CreateUser(username, email, passwordHash string) (*models.User, error) {
	id, err := db.insertID(`
		INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)
	`, username, email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return db.GetUser(id)
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(id int64) (*models.User, error) {
	return scanUser(db.queryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByLogin retrieves a user by username or email, as typed on the
// login form.
func (db *DB) GetUserByLogin(login string) (*models.User, error) {
	return scanUser(db.queryRow(`
		SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?
	`, login, login))
}

// UsernameOrEmailTaken reports whether another user (excluding excludeID)
// already holds the username or email. Used by registration and the profile
// editor.
func (db *DB) UsernameOrEmailTaken(username, email string, excludeID int64) (bool, error) {
	var count int
	err := db.queryRow(`
		SELECT COUNT(*) FROM users
		WHERE (username = ? OR email = ?) AND id != ?
	`, username, email, excludeID).Scan(&count)
	return count > 0, err
}

// UpdateProfile updates a user's username, email and avatar. A non-empty
// passwordHash also replaces the stored credential.
func (db *DB) UpdateProfile(id int64, username, email, avatar, passwordHash string) error {
	var err error
	if passwordHash != "" {
		_, err = db.exec(`
			UPDATE users SET username = ?, email = ?, avatar = ?, password_hash = ?
			WHERE id = ?
		`, username, email, avatar, passwordHash, id)
	} else {
		_, err = db.exec(`
			UPDATE users SET username = ?, email = ?, avatar = ?
			WHERE id = ?
		`, username, email, avatar, id)
	}
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}

// DeleteUser removes an account. Tasks, tags and task associations go with
// it via the schema cascades.
func (db *DB) DeleteUser(id int64) error {
	result, err := db.exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
