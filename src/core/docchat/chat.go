package docchat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdfchat/src/log"
)

type chatService struct {
	mgr      *Manager
	searcher *Searcher
	provider LLMProvider
	topK     int
	recorder Recorder
}

// NewChatService creates the session-scoped chat service. recorder may be
// nil when archiving is disabled.
func NewChatService(mgr *Manager, searcher *Searcher, provider LLMProvider, topK int, recorder Recorder) ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &chatService{
		mgr:      mgr,
		searcher: searcher,
		provider: provider,
		topK:     topK,
		recorder: recorder,
	}
}

func (s *chatService) StreamCompletion(ctx context.Context, sessionID string, message string, onSources func(chunks []RetrievedChunk) error, onDelta func(delta string) error) (*ChatCompletion, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	var completion *ChatCompletion
	err := s.mgr.withSession(sessionID, func(sess *session) error {
		var genErr error
		completion, genErr = s.generate(ctx, sess, message, onSources, onDelta)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	return completion, nil
}

func (s *chatService) generate(ctx context.Context, sess *session, message string, onSources func(chunks []RetrievedChunk) error, onDelta func(delta string) error) (*ChatCompletion, error) {
	chunks := s.retrieveContext(ctx, sess, message)
	if len(chunks) > 0 && onSources != nil {
		if err := onSources(chunks); err != nil {
			return nil, fmt.Errorf("error forwarding sources: %w", err)
		}
	}

	messages := AssembleMessages(sess.history, message, chunks)

	log.Debug("requesting completion", "session_id", sess.id, "messages", len(messages), "context_chunks", len(chunks))

	userMessage := ChatMessage{
		SessionID: sess.id,
		MessageID: uuid.New().String(),
		Content:   message,
		Role:      "user",
		CreatedAt: time.Now().UTC(),
	}

	content, err := s.provider.StreamChat(ctx, messages, onDelta)
	if err != nil {
		if ctx.Err() != nil {
			// client went away; keep the partial turn if there is one
			if content == "" {
				return nil, err
			}
			log.Info("completion canceled", "session_id", sess.id)
		} else {
			log.Error(err, "failed to generate completion", "session_id", sess.id)
			content = fmt.Sprintf("I apologize, but I'm experiencing a technical issue: %v", err)
			if onDelta != nil {
				_ = onDelta(content)
			}
		}
	}

	assistantMessage := ChatMessage{
		SessionID: sess.id,
		MessageID: uuid.New().String(),
		Content:   content,
		Role:      "assistant",
		CreatedAt: time.Now().UTC(),
	}

	sess.history = append(sess.history, userMessage, assistantMessage)

	if s.recorder != nil {
		if err := s.recorder.RecordExchange(context.WithoutCancel(ctx), userMessage, assistantMessage); err != nil {
			log.Error(err, "failed to record exchange", "session_id", sess.id)
		}
	}

	return &ChatCompletion{Message: assistantMessage, Sources: chunks}, nil
}

// retrieveContext returns the chunks used to ground the reply. Retrieval
// problems degrade to an empty context rather than failing the chat.
func (s *chatService) retrieveContext(ctx context.Context, sess *session, message string) []RetrievedChunk {
	collection := sessionCollection(sess.id)

	count, err := s.searcher.index.Count(ctx, collection)
	if err != nil {
		log.Error(err, "failed to check collection size", "session_id", sess.id)
		return nil
	}
	if count == 0 {
		log.Debug("no documents available in collection", "session_id", sess.id)
		return nil
	}

	chunks, err := s.searcher.QueryCollection(ctx, collection, message, s.topK)
	if err != nil {
		log.Error(err, "failed to retrieve documents", "session_id", sess.id)
		return nil
	}

	log.Debug("retrieved context", "session_id", sess.id, "chunks", len(chunks))
	return chunks
}
