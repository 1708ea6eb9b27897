package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Randall0514/DormEase/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.PasswordHash, &u.Platform, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, full_name, username, email, password, platform, created_at`

// Create inserts a new user. passwordHash must already be hashed; plaintext
// never reaches the store. The UNIQUE constraints on username and email are
// the final arbiter of duplicates — use IsConflict on the returned error.
func (s *UserStore) Create(fullName, username, email, passwordHash, platform string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (full_name, username, email, password, platform) VALUES (?, ?, ?, ?, ?)`,
		fullName, username, email, passwordHash, platform,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByIdentifier looks up a user by username or email.
func (s *UserStore) GetByIdentifier(identifier string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ? OR email = ?`, identifier, identifier)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by identifier: %w", err)
	}
	return u, nil
}

// UsernameOrEmailExists reports whether either value is already taken.
func (s *UserStore) UsernameOrEmailExists(username, email string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check username or email: %w", err)
	}
	return count > 0, nil
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// IsConflict reports whether err is a uniqueness violation from the database.
func IsConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
