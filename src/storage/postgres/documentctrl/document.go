package documentctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Document struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	Filename  string    `gorm:"not null" json:"filename"`
	MinioURL  string    `gorm:"not null;column:minio_url" json:"minio_url"` // bucket name + object name
	Pages     int       `gorm:"not null" json:"pages"`
	Chunks    int       `gorm:"not null" json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DocumentService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewDocumentService(db *gorm.DB) (*DocumentService, error) {
	// Initialize snowflake node
	node, err := snowflake.NewNode(1) // Node number 1 for documents
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &DocumentService{
		db:        db,
		snowflake: node,
	}, nil
}

func (s *DocumentService) Create(ctx context.Context, sessionID, filename, minioURL string, pages, chunks int) (*Document, error) {
	document := &Document{
		ID:        s.snowflake.Generate().Int64(),
		SessionID: sessionID,
		Filename:  filename,
		MinioURL:  minioURL,
		Pages:     pages,
		Chunks:    chunks,
	}

	result := s.db.WithContext(ctx).Create(document)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create document: %v", result.Error)
	}

	return document, nil
}

func (s *DocumentService) GetBySessionID(ctx context.Context, sessionID string) ([]Document, error) {
	var documents []Document
	result := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&documents)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get documents: %v", result.Error)
	}
	return documents, nil
}

func (s *DocumentService) DeleteBySessionID(ctx context.Context, sessionID string) error {
	result := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&Document{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete documents: %v", result.Error)
	}
	return nil
}

func (s *DocumentService) GetByID(ctx context.Context, id int64) (*Document, error) {
	var document Document
	result := s.db.WithContext(ctx).First(&document, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %v", result.Error)
	}
	return &document, nil
}
