package job

import (
	"context"
	"encoding/json"
	"fmt"

	"pdfchat/src/storage/postgres/documentctrl"
	"pdfchat/src/storage/postgres/messagectrl"
)

// ArchiveTask writes archival payloads into PostgreSQL
type ArchiveTask struct {
	documentService *documentctrl.DocumentService
	messageService  *messagectrl.MessageService
}

func NewArchiveTask(
	documentService *documentctrl.DocumentService,
	messageService *messagectrl.MessageService,
) *ArchiveTask {
	return &ArchiveTask{
		documentService: documentService,
		messageService:  messageService,
	}
}

func (t *ArchiveTask) HandleRecordDocument(ctx context.Context, payload json.RawMessage) error {
	// decode payload
	var documentPayload DocumentPayload
	if err := json.Unmarshal(payload, &documentPayload); err != nil {
		return fmt.Errorf("failed to unmarshal document payload: %w", err)
	}

	_, err := t.documentService.Create(
		ctx,
		documentPayload.SessionID,
		documentPayload.Filename,
		documentPayload.MinioURL,
		documentPayload.Pages,
		documentPayload.Chunks,
	)
	if err != nil {
		return fmt.Errorf("failed to create document record: %w", err)
	}

	return nil
}

func (t *ArchiveTask) HandleRecordExchange(ctx context.Context, payload json.RawMessage) error {
	// decode payload
	var exchangePayload ExchangePayload
	if err := json.Unmarshal(payload, &exchangePayload); err != nil {
		return fmt.Errorf("failed to unmarshal exchange payload: %w", err)
	}

	for _, m := range exchangePayload.Messages {
		_, err := t.messageService.Create(ctx, exchangePayload.SessionID, m.MessageID, m.Role, m.Content)
		if err != nil {
			return fmt.Errorf("failed to create message record %s: %w", m.MessageID, err)
		}
	}

	return nil
}
