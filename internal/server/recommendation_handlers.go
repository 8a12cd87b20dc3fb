package server

import (
	"skillmesh/internal/models"
	"skillmesh/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RecommendRequest names the requesting user and, for the interest-based
// modes, the interests to match on.
type RecommendRequest struct {
	UserID    uint     `json:"user_id"`
	Interests []string `json:"interests"`
}

// RecommendByInterests handles POST /api/users/recommend/interests
func (s *Server) RecommendByInterests(c *fiber.Ctx) error {
	return s.recommend(c, service.ModeByInterest)
}

// RecommendByLevel handles POST /api/users/recommend/level
func (s *Server) RecommendByLevel(c *fiber.Ctx) error {
	return s.recommend(c, service.ModeByLevel)
}

// RecommendByLevelAndInterest handles POST /api/users/recommend/level-interest
func (s *Server) RecommendByLevelAndInterest(c *fiber.Ctx) error {
	return s.recommend(c, service.ModeByBoth)
}

func (s *Server) recommend(c *fiber.Ctx, mode service.RecommendMode) error {
	var req RecommendRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	users, err := s.recommendationService.Recommend(c.Context(), req.UserID, mode, req.Interests)
	if err != nil {
		return respondServiceError(c, err)
	}

	recommendations := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		recommendations = append(recommendations, userSummary(u))
	}

	return c.JSON(fiber.Map{
		"recommendations": recommendations,
	})
}
