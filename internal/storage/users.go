package storage

import (
	"path/filepath"

	"github.com/google/uuid"
	apierrors "github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles user registration, authentication and lookups over
// the users table. Each operation is a full load-modify-save cycle against
// the backing file; no state is cached between calls.
type UserService struct {
	table *Table[models.User]
}

// NewUserService creates a new user service storing its table under dataDir.
func NewUserService(dataDir string) (*UserService, error) {
	table, err := NewTable[models.User](filepath.Join(dataDir, "db", "users.json"))
	if err != nil {
		return nil, err
	}
	return &UserService{table: table}, nil
}

// Register creates a new user with a bcrypt-hashed password. The email must
// not already be in use (exact, case-sensitive match).
func (s *UserService) Register(name, email, password string) (*models.User, error) {
	users, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	for _, u := range users {
		if u.Email == email {
			return nil, apierrors.EmailTaken()
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierrors.InternalWithError("Failed to hash password", err)
	}

	user := models.User{
		ID:               uuid.NewString(),
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		Collections:      []string{},
		RegistrationDate: models.Now(),
	}

	if err := s.table.Save(append(users, user)); err != nil {
		return nil, apierrors.Storage(err)
	}
	return &user, nil
}

// Authenticate verifies user credentials. An unknown email and a wrong
// password produce the same error so neither case leaks which one it was.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	users, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	for _, u := range users {
		if u.Email == email {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
				return nil, apierrors.InvalidCredentials()
			}
			return &u, nil
		}
	}
	return nil, apierrors.InvalidCredentials()
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(id string) (*models.User, error) {
	users, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	for _, u := range users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apierrors.NotFound("User")
}

// ListAll returns all users with their password hashes stripped.
func (s *UserService) ListAll() ([]models.User, error) {
	users, err := s.table.Load()
	if err != nil {
		return nil, apierrors.Storage(err)
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}
