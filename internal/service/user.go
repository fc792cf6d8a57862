package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// TokenIssuer signs bearer tokens for users.
type TokenIssuer interface {
	Issue(u *model.User) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
	IsAdmin  bool
}

// UserService handles account registration and login.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)
	// Login verifies the credentials and returns a signed token.
	Login(ctx context.Context, email, password string) (string, error)
}

type userService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) UserService {
	return &userService{users: users, hasher: hasher, tokens: tokens}
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     req.FullName,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrInvalidPassword
	}
	return s.tokens.Issue(u)
}
