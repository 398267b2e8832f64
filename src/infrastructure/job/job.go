package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Task types handled by the archive worker
const (
	TaskTypeRecordDocument = "record_document"
	TaskTypeRecordExchange = "record_exchange"
)

// Job represents a background job
type Job struct {
	ID        int             `json:"id"`
	TaskType  string          `json:"task_type"`
	Payload   json.RawMessage `json:"payload"`
	Status    JobStatus       `json:"status"`
	Error     *string         `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// JobRepository defines the interface for job persistence
type JobRepository interface {
	Create(ctx context.Context, taskType string, payload json.RawMessage) (*Job, error)
	Get(ctx context.Context, id int) (*Job, error)
	UpdateStatus(ctx context.Context, id int, status JobStatus, err *string) error
}

// DocumentPayload describes an uploaded document whose copy already sits
// in MinIO and whose metadata should be recorded in PostgreSQL
type DocumentPayload struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	MinioURL  string `json:"minio_url"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
}

// ExchangePayload carries one finished user/assistant exchange
type ExchangePayload struct {
	SessionID string            `json:"session_id"`
	Messages  []ArchivedMessage `json:"messages"`
}

type ArchivedMessage struct {
	MessageID string    `json:"message_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
