package server

import (
	"context"
	"time"

	"skillmesh/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ConnectRequest names the two users whose connection is being changed.
type ConnectRequest struct {
	UserID   uint `json:"user_id"`
	TargetID uint `json:"target_id"`
}

// ConnectionsRequest names the user whose connections are listed.
type ConnectionsRequest struct {
	UserID uint `json:"user_id"`
}

// ConnectUsers handles POST /api/users/connect
func (s *Server) ConnectUsers(c *fiber.Ctx) error {
	var req ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 || req.TargetID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id and target_id are required"))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	userA, userB, err := s.connectionService.Connect(ctx, req.UserID, req.TargetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishUserEvent(userB.ID, EventConnectionCreated, map[string]interface{}{
		"user": userSummary(*userA),
	})

	return c.JSON(fiber.Map{
		"user":   userA,
		"target": userB,
	})
}

// DisconnectUsers handles POST /api/users/disconnect
func (s *Server) DisconnectUsers(c *fiber.Ctx) error {
	var req ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 || req.TargetID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id and target_id are required"))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	connsA, connsB, err := s.connectionService.Disconnect(ctx, req.UserID, req.TargetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishUserEvent(req.TargetID, EventConnectionRemoved, map[string]interface{}{
		"user_id": req.UserID,
	})

	return c.JSON(fiber.Map{
		"user_connections":   connsA,
		"target_connections": connsB,
	})
}

// GetConnections handles POST /api/users/connections
func (s *Server) GetConnections(c *fiber.Ctx) error {
	var req ConnectionsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	connections, err := s.connectionService.ListConnections(c.Context(), req.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"connections": connections,
	})
}
