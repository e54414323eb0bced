package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrCredentialsRequired = errors.New("user name and password are required")
	ErrInvalidCredentials  = errors.New("invalid user name or password")
	ErrAdminNotFound       = errors.New("admin not found")
)

// Service handles admin accounts and logins
type Service struct {
	repo     *Repository
	sessions *SessionManager
}

// NewService creates a new admin service
func NewService(repo *Repository, sessions *SessionManager) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Login checks the credentials and issues a session token
func (s *Service) Login(ctx context.Context, userName, password string) (*Admin, string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return nil, "", ErrCredentialsRequired
	}

	a, err := s.repo.GetByUserName(ctx, userName)
	if err != nil {
		return nil, "", err
	}
	if a == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(a.ID)
	if err != nil {
		return nil, "", err
	}
	return a, token, nil
}

// GetByID retrieves the admin behind a session
func (s *Service) GetByID(ctx context.Context, id string) (*Admin, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAdminNotFound
	}
	return a, nil
}

// Seed creates the admin account or resets its password
func (s *Service) Seed(ctx context.Context, userName, password string) (*Admin, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.Upsert(ctx, userName, string(hash))
}
