package repository

import (
	"context"

	"gorm.io/gorm"

	"minichat/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// RecentByRoom returns up to limit of the newest messages in a room,
	// oldest first, ready for chronological display.
	RecentByRoom(ctx context.Context, room string, limit int) ([]models.ChatMessage, error)
	DeleteByID(ctx context.Context, messageID int64) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) RecentByRoom(ctx context.Context, room string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("room = ?", room).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// newest-limit window, flipped back to ascending for display
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) DeleteByID(ctx context.Context, messageID int64) error {
	return r.db.WithContext(ctx).
		Delete(&models.ChatMessage{}, messageID).Error
}
