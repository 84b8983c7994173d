package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Store persists users in BadgerDB, keyed "user:{username}" with the
// username lowercased so lookups are case-insensitive.
type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

type storedUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func userKey(username string) []byte {
	return []byte("user:" + strings.ToLower(username))
}

// Register hashes the password and persists a new user. Returns
// ErrUserExists when the username is already taken.
func (s *Store) Register(username, password string) (User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	rec := storedUser{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return User{}, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return User{}, err
	}

	return User{ID: rec.ID, Username: rec.Username, CreatedAt: rec.CreatedAt}, nil
}

// Authenticate verifies the password for the given username. Unknown users
// and wrong passwords both map to ErrInvalidCredentials.
func (s *Store) Authenticate(username, password string) (User, error) {
	var rec storedUser
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	ok, err := verifyPassword(password, rec.PasswordHash)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}

	return User{ID: rec.ID, Username: rec.Username, CreatedAt: rec.CreatedAt}, nil
}
