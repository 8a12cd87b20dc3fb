package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"skillmesh/internal/models"
	"skillmesh/internal/repository"
)

// userRepoStub lets each test supply only the repository behavior it cares
// about. Unset functions return zero values.
type userRepoStub struct {
	getByIDFn     func(ctx context.Context, id uint) (*models.User, error)
	createFn      func(ctx context.Context, user *models.User) error
	createBatchFn func(ctx context.Context, users []*models.User) error
	updateFn      func(ctx context.Context, user *models.User) error
	listFn        func(ctx context.Context, limit, offset int) ([]models.User, error)
	findFn        func(ctx context.Context, filter repository.UserFilter) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) CreateBatch(ctx context.Context, users []*models.User) error {
	if s.createBatchFn != nil {
		return s.createBatchFn(ctx, users)
	}
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *userRepoStub) Find(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, filter)
	}
	return nil, nil
}

// messageRepoStub mirrors userRepoStub for the message repository.
type messageRepoStub struct {
	createFn          func(ctx context.Context, message *models.Message) error
	getConversationFn func(ctx context.Context, userID, otherID uint) ([]models.Message, error)
}

func (s *messageRepoStub) Create(ctx context.Context, message *models.Message) error {
	if s.createFn != nil {
		return s.createFn(ctx, message)
	}
	return nil
}

func (s *messageRepoStub) GetConversation(ctx context.Context, userID, otherID uint) ([]models.Message, error) {
	if s.getConversationFn != nil {
		return s.getConversationFn(ctx, userID, otherID)
	}
	return nil, nil
}

// memoryUserStore is a map-backed UserRepository for tests that exercise
// read-modify-write sequences, such as concurrent connects.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[uint]models.User
}

func newMemoryUserStore(users ...models.User) *memoryUserStore {
	store := &memoryUserStore{users: make(map[uint]models.User, len(users))}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (s *memoryUserStore) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := u
	copied.Skills = append([]string(nil), u.Skills...)
	copied.Connections = append([]uint(nil), u.Connections...)
	return &copied, nil
}

func (s *memoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = uint(len(s.users) + 1)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memoryUserStore) CreateBatch(ctx context.Context, users []*models.User) error {
	for _, u := range users {
		if err := s.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *memoryUserStore) List(_ context.Context, limit, offset int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []models.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *memoryUserStore) Find(_ context.Context, filter repository.UserFilter) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if filter.ExcludeID != 0 && u.ID == filter.ExcludeID {
			continue
		}
		if filter.MinScore != nil && u.Score < *filter.MinScore {
			continue
		}
		if filter.MaxScore != nil && u.Score > *filter.MaxScore {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func appErrCode(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
