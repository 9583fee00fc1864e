package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

const bcryptCost = 12

// Seed describes a console operator to register at startup. The user table
// is injected, not hardcoded: real deployments seed it from configuration
// until the platform's identity backend takes over.
type Seed struct {
	Email       string
	Name        string
	Role        string
	Password    string
	Permissions []string // defaults to the role's permission set when empty
}

type seededUser struct {
	user         *models.User
	passwordHash string
}

// userTable holds the seeded operators, keyed by normalized email.
type userTable struct {
	users map[string]seededUser
}

func newUserTable() *userTable {
	return &userTable{users: make(map[string]seededUser)}
}

func (t *userTable) add(seed Seed) error {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" {
		return fmt.Errorf("seed user email is required")
	}
	if seed.Password == "" {
		return fmt.Errorf("seed user %s has no password", email)
	}

	role := seed.Role
	if role == "" {
		role = models.RoleViewer
	}

	permissions := seed.Permissions
	if len(permissions) == 0 {
		permissions = models.DefaultPermissions(role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password for %s: %w", email, err)
	}

	t.users[email] = seededUser{
		user: &models.User{
			ID:          uuid.New().String(),
			Email:       email,
			Name:        seed.Name,
			Role:        role,
			Permissions: permissions,
		},
		passwordHash: string(hash),
	}
	return nil
}

// authenticate returns the user when email+password match a seeded entry.
func (t *userTable) authenticate(email, password string) (*models.User, bool) {
	entry, ok := t.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.passwordHash), []byte(password)) != nil {
		return nil, false
	}
	return entry.user, true
}
