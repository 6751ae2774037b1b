// Package auth checks user credentials against a YAML users file and keeps
// the session tokens issued after a successful login.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/DeafMist/news-research-radar/internal/ttlcache"
)

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// User is one record of the users file.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// usersFile is the YAML layout:
//
//	users:
//	  - username: analyst
//	    password: secret
type usersFile struct {
	Users []User `yaml:"users"`
}

// Store holds the known users. Passwords are stored as written in the file.
type Store struct {
	users []User
}

// NewStore builds a store from in-memory records.
func NewStore(users []User) *Store {
	cp := make([]User, len(users))
	copy(cp, users)
	return &Store{users: cp}
}

// LoadStore reads the users file at path.
func LoadStore(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	var cfg usersFile
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode users file: %w", err)
	}
	for i, u := range cfg.Users {
		if strings.TrimSpace(u.Username) == "" {
			return nil, fmt.Errorf("users file: entry %d has no username", i)
		}
	}
	return NewStore(cfg.Users), nil
}

// Authenticate reports whether username and password match a record.
// Every record is compared so the timing does not reveal which user exists.
func (s *Store) Authenticate(username, password string) bool {
	ok := 0
	for _, u := range s.users {
		nameEq := subtle.ConstantTimeCompare([]byte(u.Username), []byte(username))
		passEq := subtle.ConstantTimeCompare([]byte(u.Password), []byte(password))
		ok |= nameEq & passEq
	}
	return ok == 1
}

// Len returns the number of users.
func (s *Store) Len() int {
	return len(s.users)
}

// Sessions issues and resolves opaque login tokens.
type Sessions struct {
	store  *Store
	tokens *ttlcache.Cache[string]
}

// NewSessions keeps up to capacity tokens, each valid for ttl.
func NewSessions(store *Store, capacity int, ttl time.Duration) *Sessions {
	return &Sessions{store: store, tokens: ttlcache.New[string](capacity, ttl)}
}

// Login authenticates the user and returns a new token.
func (s *Sessions) Login(username, password string) (string, error) {
	if !s.store.Authenticate(username, password) {
		return "", ErrInvalidCredentials
	}
	token := uuid.NewString()
	s.tokens.Put(token, username)
	return token, nil
}

// User resolves a token to its username.
func (s *Sessions) User(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return s.tokens.Get(token)
}

// Logout invalidates a token.
func (s *Sessions) Logout(token string) {
	s.tokens.Remove(token)
}
