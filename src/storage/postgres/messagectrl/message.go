package messagectrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Message struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	MessageID string    `gorm:"not null" json:"message_id"`
	Role      string    `gorm:"not null" json:"role"`
	Content   string    `gorm:"not null;type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewMessageService(db *gorm.DB) (*MessageService, error) {
	// Initialize snowflake node
	node, err := snowflake.NewNode(2) // Node number 2 for messages
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &MessageService{
		db:        db,
		snowflake: node,
	}, nil
}

func (s *MessageService) Create(ctx context.Context, sessionID, messageID, role, content string) (*Message, error) {
	message := &Message{
		ID:        s.snowflake.Generate().Int64(),
		SessionID: sessionID,
		MessageID: messageID,
		Role:      role,
		Content:   content,
	}

	result := s.db.WithContext(ctx).Create(message)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create message: %v", result.Error)
	}

	return message, nil
}

func (s *MessageService) GetBySessionID(ctx context.Context, sessionID string) ([]Message, error) {
	var messages []Message
	result := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at, id").Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get messages: %v", result.Error)
	}
	return messages, nil
}

func (s *MessageService) DeleteBySessionID(ctx context.Context, sessionID string) error {
	result := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&Message{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete messages: %v", result.Error)
	}
	return nil
}
