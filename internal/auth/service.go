// Package auth registers users, checks passwords and issues access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/i474232898/plant-care/internal/care"
)

const minPasswordLen = 8

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

var validate = validator.New()

// RegisterInput is a new account. City and Country are optional.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	City     string
	Country  string
}

// Service owns account creation and login.
type Service struct {
	users  care.UserStore
	tokens *Tokens
	cost   int
	now    func() time.Time
}

// NewService creates a Service hashing passwords with bcrypt's default cost.
func NewService(users care.UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost, now: time.Now}
}

// Register creates an account. Emails are stored lowercased.
func (s *Service) Register(ctx context.Context, in RegisterInput) (care.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		return care.User{}, fmt.Errorf("%w: email is not valid", care.ErrInvalid)
	}
	if len(in.Password) < minPasswordLen {
		return care.User{}, fmt.Errorf("%w: password must be at least %d characters", care.ErrInvalid, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return care.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := care.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: string(hash),
		City:         strings.TrimSpace(in.City),
		Country:      strings.TrimSpace(in.Country),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return care.User{}, err
	}
	return u, nil
}

// Login checks the password and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, care.User, error) {
	u, err := s.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, care.ErrNotFound) {
		return "", care.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", care.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", care.User{}, ErrInvalidCredentials
	}

	tok, err := s.tokens.Sign(u.ID)
	if err != nil {
		return "", care.User{}, fmt.Errorf("sign token: %w", err)
	}
	return tok, u, nil
}

// Me returns the account behind a token's subject.
func (s *Service) Me(ctx context.Context, userID string) (care.User, error) {
	return s.users.GetUser(ctx, userID)
}

// UpdateLocation changes the city used for the user's weather lookups.
func (s *Service) UpdateLocation(ctx context.Context, userID, city, country string) (care.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return care.User{}, err
	}
	u.City = strings.TrimSpace(city)
	u.Country = strings.TrimSpace(country)
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return care.User{}, err
	}
	return u, nil
}
