package repository

import (
	"context"

	"skillmesh/internal/cache"
	"skillmesh/internal/models"
	"skillmesh/internal/observability"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetConversation(ctx context.Context, userID, otherID uint) ([]models.Message, error)
}

type messageRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	defer r.metrics.TrackQuery("create", "messages")()

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewStoreError("failed to persist message", err)
	}
	cache.InvalidateConversation(ctx, message.SenderID, message.ReceiverID)
	return nil
}

// GetConversation returns every message between the pair in either direction,
// ordered by creation time with id as the tie-breaker.
func (r *messageRepository) GetConversation(ctx context.Context, userID, otherID uint) ([]models.Message, error) {
	defer r.metrics.TrackQuery("get_conversation", "messages")()

	var messages []models.Message
	key := cache.ConversationKey(userID, otherID)

	err := cache.Aside(ctx, key, &messages, cache.MessageHistoryTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				userID, otherID, otherID, userID).
			Order("created_at ASC, id ASC").
			Find(&messages).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return messages, nil
}
