package server

import (
	"context"
	"time"

	"skillmesh/internal/models"
	"skillmesh/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUserRequest is the payload for registering a user.
type CreateUserRequest struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// UpdateUserRequest is the payload for profile updates. Omitted fields are
// left untouched; score and connections are never client-writable.
type UpdateUserRequest struct {
	Name   *string   `json:"name"`
	Skills *[]string `json:"skills"`
}

// BulkCreateUsersRequest carries the users to insert in one batch.
type BulkCreateUsersRequest struct {
	Users []service.NewUser `json:"users"`
}

// CreateUser handles POST /api/users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.Context(), req.Name, req.Skills)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// BulkCreateUsers handles POST /api/users/bulk
func (s *Server) BulkCreateUsers(c *fiber.Ctx) error {
	var req BulkCreateUsersRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	users, err := s.userService.BulkCreate(ctx, req.Users)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), id, req.Name, req.Skills)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.userService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"users":  users,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}
