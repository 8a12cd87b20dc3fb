package service

import (
	"context"

	"skillmesh/internal/models"
	"skillmesh/internal/repository"
)

// RecommendMode selects the matching strategy for recommendations.
type RecommendMode int

const (
	// ModeByInterest matches users sharing at least one of the given interests.
	ModeByInterest RecommendMode = iota + 1
	// ModeByLevel matches users whose score falls within a narrow window
	// around the requesting user's score.
	ModeByLevel
	// ModeByBoth matches on interests and a wider score window combined.
	ModeByBoth
)

const (
	levelScoreWindow    = 5.0
	combinedScoreWindow = 10.0
)

// RecommendationService suggests peers to connect with.
type RecommendationService struct {
	users repository.UserRepository
}

// NewRecommendationService returns a new RecommendationService.
func NewRecommendationService(users repository.UserRepository) *RecommendationService {
	return &RecommendationService{users: users}
}

// Recommend returns candidate peers for the user under the given mode. The
// requesting user is always excluded; an empty result is not an error.
// Candidates may include users already connected to the requester — filtering
// those out is the caller's choice.
func (s *RecommendationService) Recommend(ctx context.Context, userID uint, mode RecommendMode, interests []string) ([]models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	filter := repository.UserFilter{ExcludeID: userID}

	switch mode {
	case ModeByInterest:
		if len(interests) == 0 {
			return nil, models.NewValidationError("at least one interest is required")
		}
		filter.SkillsAny = interests

	case ModeByLevel:
		min := user.Score - levelScoreWindow
		max := user.Score + levelScoreWindow
		filter.MinScore = &min
		filter.MaxScore = &max

	case ModeByBoth:
		if len(interests) == 0 {
			return nil, models.NewValidationError("at least one interest is required")
		}
		filter.SkillsAny = interests
		min := user.Score - combinedScoreWindow
		max := user.Score + combinedScoreWindow
		filter.MinScore = &min
		filter.MaxScore = &max

	default:
		return nil, models.NewValidationError("unknown recommendation mode")
	}

	return s.users.Find(ctx, filter)
}
