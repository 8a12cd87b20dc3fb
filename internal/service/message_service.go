package service

import (
	"context"
	"log/slog"
	"strings"

	"skillmesh/internal/middleware"
	"skillmesh/internal/models"
	"skillmesh/internal/observability"
	"skillmesh/internal/repository"
)

// MessagePusher delivers a persisted message to the receiver's live session,
// if any. Implementations must not block; delivery is best-effort.
type MessagePusher interface {
	NotifyMessage(ctx context.Context, message *models.Message)
}

// MessageService handles direct message persistence and best-effort live
// delivery.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	pusher   MessagePusher
}

// NewMessageService returns a new MessageService. pusher may be nil, in which
// case messages are only persisted.
func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, pusher MessagePusher) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		pusher:   pusher,
	}
}

// Send validates, persists and then pushes a message. Persistence is the
// source of truth: a failed or absent live session never fails the send, the
// receiver picks the message up from history instead.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uint, text, imageURL string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("message text is required")
	}

	if _, err := s.users.GetByID(ctx, senderID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		ImageURL:   imageURL,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	messageType := "text"
	if imageURL != "" {
		messageType = "image"
	}
	observability.MessageThroughput.WithLabelValues("direct", messageType).Inc()

	if s.pusher != nil {
		s.pusher.NotifyMessage(ctx, message)
	}

	return message, nil
}

// History returns all messages between the user and a counterpart, in either
// direction, ordered oldest first.
func (s *MessageService) History(ctx context.Context, userID, otherID uint) ([]models.Message, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	messages, err := s.messages.GetConversation(ctx, userID, otherID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to load conversation",
			slog.Any("user_id", userID),
			slog.Any("other_id", otherID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return messages, nil
}
