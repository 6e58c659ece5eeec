// Package userdir holds the portal's local user directory, loaded from
// configuration. This stands in for whatever user store the real main
// system has; the bridge only needs Authenticate and Lookup.
package userdir

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/saltmarshlabs/crossgate/internal/config"
)

// ErrInvalidCredentials is returned for any failed login. Unknown
// username and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash keeps Authenticate doing bcrypt work for unknown usernames
// so response timing does not reveal which field was wrong.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// User is a portal user as carried into bridge claims.
type User struct {
	Username string
	UserID   string
	Email    string
	FullName string
}

type entry struct {
	user         User
	passwordHash string
}

// Directory is an in-memory username index over the configured users.
type Directory struct {
	users map[string]entry
}

// NewDirectory builds a directory from portal configuration.
func NewDirectory(users []config.PortalUser) *Directory {
	index := make(map[string]entry, len(users))
	for _, u := range users {
		index[u.Username] = entry{
			user: User{
				Username: u.Username,
				UserID:   u.UserID,
				Email:    u.Email,
				FullName: u.FullName,
			},
			passwordHash: u.PasswordHash,
		}
	}
	return &Directory{users: index}
}

// Authenticate checks a username and password against the directory.
func (d *Directory) Authenticate(username, password string) (*User, error) {
	e, ok := d.users[username]
	if !ok {
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user := e.user
	return &user, nil
}

// Lookup returns the user for a username.
func (d *Directory) Lookup(username string) (*User, bool) {
	e, ok := d.users[username]
	if !ok {
		return nil, false
	}
	user := e.user
	return &user, true
}
