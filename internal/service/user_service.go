package service

import (
	"context"
	"strings"

	"skillmesh/internal/models"
	"skillmesh/internal/repository"
)

// NewUser describes a user to be created. Non-zero scores are only honored by
// bulk creation, which exists for seeding and imports.
type NewUser struct {
	Name   string   `json:"name"`
	Score  float64  `json:"score"`
	Skills []string `json:"skills"`
}

// UserService manages user profiles.
type UserService struct {
	users repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates a user with a zero score and no connections.
func (s *UserService) Register(ctx context.Context, name string, skills []string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}
	if skills == nil {
		skills = []string{}
	}

	user := &models.User{
		Name:        name,
		Skills:      skills,
		Connections: []uint{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns users ordered by id.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// UpdateProfile changes a user's name and/or skills. Nil fields are left
// untouched; score and connections are never writable through this path.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, name *string, skills *[]string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, models.NewValidationError("name cannot be empty")
		}
		user.Name = trimmed
	}
	if skills != nil {
		user.Skills = *skills
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BulkCreate inserts a batch of users in one write. Every entry is validated
// before anything is persisted, so a bad entry rejects the whole batch.
func (s *UserService) BulkCreate(ctx context.Context, entries []NewUser) ([]models.User, error) {
	if len(entries) == 0 {
		return nil, models.NewValidationError("at least one user is required")
	}

	users := make([]*models.User, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, models.NewValidationError("every user needs a name")
		}
		skills := entry.Skills
		if skills == nil {
			skills = []string{}
		}
		users = append(users, &models.User{
			Name:        name,
			Score:       entry.Score,
			Skills:      skills,
			Connections: []uint{},
		})
	}

	if err := s.users.CreateBatch(ctx, users); err != nil {
		return nil, err
	}

	created := make([]models.User, len(users))
	for i, u := range users {
		created[i] = *u
	}
	return created, nil
}
