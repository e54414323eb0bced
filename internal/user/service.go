package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNameRequired    = errors.New("name is required")
	ErrNoMembers       = errors.New("at least one member is required")
	ErrNameTaken       = errors.New("member name already exists")
	ErrDuplicateNames  = errors.New("member names must be unique")
	ErrUserHasOrders   = errors.New("cannot delete a member who has order items")
	ErrUserHasPayments = errors.New("cannot delete a member who has payments")
)

// Service handles user business logic
type Service struct {
	repo *Repository
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateMany adds members in bulk. Blank names are dropped; existing names
// reject the whole batch and are listed in the error.
func (s *Service) CreateMany(ctx context.Context, req *CreateUsersRequest) ([]*User, error) {
	members := make([]MemberInput, 0, len(req.Members))
	seen := make(map[string]struct{}, len(req.Members))
	for _, m := range req.Members {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNames, name)
		}
		seen[name] = struct{}{}
		members = append(members, MemberInput{Name: name, Email: trimOptional(m.Email)})
	}
	if len(members) == 0 {
		return nil, ErrNoMembers
	}

	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	existing, err := s.repo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		taken := make([]string, len(existing))
		for i, u := range existing {
			taken[i] = u.Name
		}
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, strings.Join(taken, ", "))
	}

	return s.repo.CreateMany(ctx, members)
}

// LookupOrCreate returns the member with exactly this trimmed name, creating it if absent
func (s *Service) LookupOrCreate(ctx context.Context, name string) (*User, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, ErrNameRequired
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	created, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// FindByNameInsensitive resolves a display name to a member ignoring case.
// It returns nil when nobody matches.
func (s *Service) FindByNameInsensitive(ctx context.Context, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return s.repo.FindByNameInsensitive(ctx, name)
}

// List retrieves all users sorted by name
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Stats retrieves every user with order-line count and total, busiest first
func (s *Service) Stats(ctx context.Context) ([]*Stat, error) {
	return s.repo.ListStats(ctx)
}

// Update renames a member
func (s *Service) Update(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}

	if name != existing.Name {
		clash, err := s.repo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if clash != nil && clash.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
		}
	}

	updated, err := s.repo.Update(ctx, id, &UpdateUserRequest{Name: name, Email: trimOptional(req.Email)}, name != existing.Name)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

// Delete removes a member who owns no order lines and no payments
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrUserNotFound
	}

	count, err := s.repo.CountOrderItems(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w (%d items)", ErrUserHasOrders, count)
	}

	payments, err := s.repo.CountPayments(ctx, id)
	if err != nil {
		return err
	}
	if payments > 0 {
		return fmt.Errorf("%w (%d payments)", ErrUserHasPayments, payments)
	}

	return s.repo.Delete(ctx, id)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
