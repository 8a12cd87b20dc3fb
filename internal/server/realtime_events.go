package server

import (
	"context"
	"encoding/json"
	"log"

	"skillmesh/internal/models"
	"skillmesh/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventMessageReceived   = "message_received"
	EventOnlineUsers       = "online_users"
	EventConnectionCreated = "connection_created"
	EventConnectionRemoved = "connection_removed"
)

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()

	// With Redis available the hub's subscriber delivers the event to local
	// sessions, so publishing and broadcasting would double-deliver. Only
	// broadcast directly when running without Redis.
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
}

func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()

	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			log.Printf("failed to publish %s broadcast event: %v", eventType, err)
		}
		return
	}
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
}

// broadcastOnlineUsers pushes the current presence snapshot to every session.
// Called on every join and leave.
func (s *Server) broadcastOnlineUsers() {
	if s.hub == nil {
		return
	}
	s.publishBroadcastEvent(EventOnlineUsers, map[string]interface{}{
		"user_ids": s.hub.OnlineIDs(),
	})
}

// NotifyMessage pushes a persisted message to the receiver's live session.
// It satisfies service.MessagePusher; failures are logged upstream and never
// affect persistence.
func (s *Server) NotifyMessage(_ context.Context, message *models.Message) {
	s.publishUserEvent(message.ReceiverID, EventMessageReceived, map[string]interface{}{
		"id":          message.ID,
		"sender_id":   message.SenderID,
		"receiver_id": message.ReceiverID,
		"text":        message.Text,
		"image_url":   message.ImageURL,
		"created_at":  message.CreatedAt,
	})
}

func userSummary(user models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":     user.ID,
		"name":   user.Name,
		"score":  user.Score,
		"skills": user.Skills,
	}
}
