package server

import (
	"context"
	"time"

	"skillmesh/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest carries a direct message to the user in the route path.
type SendMessageRequest struct {
	SenderID uint   `json:"sender_id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

// SendChatMessage handles POST /api/chat/send/:id where :id is the receiver.
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.SenderID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("sender_id is required"))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	message, err := s.messageService.Send(ctx, req.SenderID, receiverID, req.Text, req.ImageURL)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetChatHistory handles GET /api/chat/:id where :id is the counterpart and
// the requesting user comes from the user_id query parameter.
func (s *Server) GetChatHistory(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := c.QueryInt("user_id")
	if userID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id query parameter is required"))
	}

	messages, err := s.messageService.History(c.Context(), uint(userID), otherID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}
