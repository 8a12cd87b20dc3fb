package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmesh/internal/models"
	"skillmesh/internal/repository"
)

func TestRecommendationService_ByInterest(t *testing.T) {
	var captured repository.UserFilter
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Alice", Score: 10}, nil
		},
		findFn: func(_ context.Context, filter repository.UserFilter) ([]models.User, error) {
			captured = filter
			return []models.User{{ID: 4, Name: "Dave"}}, nil
		},
	}
	svc := NewRecommendationService(repo)

	users, err := svc.Recommend(context.Background(), 1, ModeByInterest, []string{"Node.js"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, uint(1), captured.ExcludeID)
	assert.Equal(t, []string{"Node.js"}, captured.SkillsAny)
	assert.Nil(t, captured.MinScore)
	assert.Nil(t, captured.MaxScore)
}

func TestRecommendationService_ByLevelWindow(t *testing.T) {
	var captured repository.UserFilter
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Bob", Score: 15}, nil
		},
		findFn: func(_ context.Context, filter repository.UserFilter) ([]models.User, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := NewRecommendationService(repo)

	_, err := svc.Recommend(context.Background(), 2, ModeByLevel, nil)
	require.NoError(t, err)
	require.NotNil(t, captured.MinScore)
	require.NotNil(t, captured.MaxScore)
	assert.InDelta(t, 10.0, *captured.MinScore, 1e-9)
	assert.InDelta(t, 20.0, *captured.MaxScore, 1e-9)
	assert.Empty(t, captured.SkillsAny)
}

func TestRecommendationService_ByBothWidensWindow(t *testing.T) {
	var captured repository.UserFilter
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Eve", Score: 8}, nil
		},
		findFn: func(_ context.Context, filter repository.UserFilter) ([]models.User, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := NewRecommendationService(repo)

	_, err := svc.Recommend(context.Background(), 5, ModeByBoth, []string{"Python", "Django"})
	require.NoError(t, err)
	require.NotNil(t, captured.MinScore)
	require.NotNil(t, captured.MaxScore)
	assert.InDelta(t, -2.0, *captured.MinScore, 1e-9)
	assert.InDelta(t, 18.0, *captured.MaxScore, 1e-9)
	assert.Equal(t, []string{"Python", "Django"}, captured.SkillsAny)
}

func TestRecommendationService_InterestModesRequireInterests(t *testing.T) {
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Score: 10}, nil
		},
	}
	svc := NewRecommendationService(repo)

	for _, mode := range []RecommendMode{ModeByInterest, ModeByBoth} {
		_, err := svc.Recommend(context.Background(), 1, mode, nil)
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appErrCode(err))
	}
}

func TestRecommendationService_UnknownUser(t *testing.T) {
	svc := NewRecommendationService(&userRepoStub{})

	_, err := svc.Recommend(context.Background(), 42, ModeByLevel, nil)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(err))
}

func TestRecommendationService_UnknownMode(t *testing.T) {
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Score: 10}, nil
		},
	}
	svc := NewRecommendationService(repo)

	_, err := svc.Recommend(context.Background(), 1, RecommendMode(0), nil)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, appErrCode(err))
}

func TestRecommendationService_EmptyResultIsNotAnError(t *testing.T) {
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Score: 10}, nil
		},
		findFn: func(_ context.Context, _ repository.UserFilter) ([]models.User, error) {
			return []models.User{}, nil
		},
	}
	svc := NewRecommendationService(repo)

	users, err := svc.Recommend(context.Background(), 1, ModeByLevel, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
