package job

import (
	"context"
	"encoding/json"
	"fmt"

	"pdfchat/src/core/docchat"
	"pdfchat/src/storage/minioctrl"
)

// Archiver forwards uploaded documents and finished exchanges to the
// archival queue. The PDF bytes are copied to MinIO before the job is
// enqueued so the worker only moves metadata.
type Archiver struct {
	jobs   *JobService
	minio  *minioctrl.MinioService
	bucket string
}

func NewArchiver(jobs *JobService, minio *minioctrl.MinioService, bucket string) *Archiver {
	if bucket == "" {
		bucket = minioctrl.DefaultDocumentsBucket
	}
	return &Archiver{
		jobs:   jobs,
		minio:  minio,
		bucket: bucket,
	}
}

func (a *Archiver) RecordDocument(ctx context.Context, sessionID string, file docchat.UploadFile, info docchat.DocumentInfo) error {
	objectName := fmt.Sprintf("%s/%s", sessionID, file.Name)
	if err := a.minio.PutObject(ctx, a.bucket, objectName, file.Data, "application/pdf"); err != nil {
		return fmt.Errorf("failed to store document copy: %w", err)
	}

	payload, err := json.Marshal(DocumentPayload{
		SessionID: sessionID,
		Filename:  info.Filename,
		MinioURL:  a.minio.ObjectURL(a.bucket, objectName),
		Pages:     info.Pages,
		Chunks:    info.Chunks,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal document payload: %w", err)
	}

	if _, err := a.jobs.EnqueueJob(ctx, TaskTypeRecordDocument, payload); err != nil {
		return fmt.Errorf("failed to enqueue document job: %w", err)
	}

	return nil
}

func (a *Archiver) RecordExchange(ctx context.Context, userMessage, assistantMessage docchat.ChatMessage) error {
	payload, err := json.Marshal(ExchangePayload{
		SessionID: userMessage.SessionID,
		Messages: []ArchivedMessage{
			{
				MessageID: userMessage.MessageID,
				Role:      userMessage.Role,
				Content:   userMessage.Content,
				CreatedAt: userMessage.CreatedAt,
			},
			{
				MessageID: assistantMessage.MessageID,
				Role:      assistantMessage.Role,
				Content:   assistantMessage.Content,
				CreatedAt: assistantMessage.CreatedAt,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal exchange payload: %w", err)
	}

	if _, err := a.jobs.EnqueueJob(ctx, TaskTypeRecordExchange, payload); err != nil {
		return fmt.Errorf("failed to enqueue exchange job: %w", err)
	}

	return nil
}
