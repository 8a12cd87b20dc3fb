// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"skillmesh/internal/cache"
	"skillmesh/internal/models"
	"skillmesh/internal/observability"

	"gorm.io/gorm"
)

// UserFilter describes a predicate for FindUsers queries. Zero values mean
// "no constraint" for that field.
type UserFilter struct {
	ExcludeID uint
	SkillsAny []string
	MinScore  *float64
	MaxScore  *float64
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateBatch(ctx context.Context, users []*models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Find(ctx context.Context, filter UserFilter) ([]models.User, error)
}

type userRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.metrics.TrackQuery("get_by_id", "users")()

	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.JitterTTL(cache.UserTTL), func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("create", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewStoreError("failed to create user", err)
	}
	return nil
}

func (r *userRepository) CreateBatch(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	defer r.metrics.TrackQuery("create_batch", "users")()

	if err := r.db.WithContext(ctx).Create(users).Error; err != nil {
		return models.NewStoreError("failed to create users", err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("update", "users")()

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewStoreError("failed to save user", err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	defer r.metrics.TrackQuery("list", "users")()

	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Find applies score range and exclusion in SQL; the skill-overlap predicate
// runs in Go because skills live in a JSON column that both supported drivers
// must be able to serve.
func (r *userRepository) Find(ctx context.Context, filter UserFilter) ([]models.User, error) {
	defer r.metrics.TrackQuery("find", "users")()

	query := r.db.WithContext(ctx).Model(&models.User{}).Order("id")
	if filter.ExcludeID != 0 {
		query = query.Where("id <> ?", filter.ExcludeID)
	}
	if filter.MinScore != nil {
		query = query.Where("score >= ?", *filter.MinScore)
	}
	if filter.MaxScore != nil {
		query = query.Where("score <= ?", *filter.MaxScore)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	if len(filter.SkillsAny) == 0 {
		return users, nil
	}

	wanted := make(map[string]struct{}, len(filter.SkillsAny))
	for _, s := range filter.SkillsAny {
		wanted[s] = struct{}{}
	}

	matched := users[:0]
	for _, u := range users {
		for _, skill := range u.Skills {
			if _, ok := wanted[skill]; ok {
				matched = append(matched, u)
				break
			}
		}
	}
	return matched, nil
}
