package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// maxContextRunes bounds the document text sent to the chat model.
const maxContextRunes = 100_000

// ChatService answers questions about stored documents.
type ChatService struct {
	documents *DocumentService
	model     driven.ChatModel
}

// NewChatService creates a chat service.
// The model parameter is optional; when nil, Ask returns domain.ErrLLMUnavailable.
func NewChatService(documents *DocumentService, model driven.ChatModel) *ChatService {
	return &ChatService{
		documents: documents,
		model:     model,
	}
}

// Available reports whether a chat model is configured.
func (s *ChatService) Available() bool {
	return s.model != nil
}

// Ask answers question using the document's stored text as context.
func (s *ChatService) Ask(
	ctx context.Context, documentID, question string, history []driven.ChatMessage,
) (string, error) {
	if s.model == nil {
		return "", domain.ErrLLMUnavailable
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}

	content, err := s.documents.GetContent(ctx, documentID)
	if err != nil {
		return "", err
	}

	logger.Debug("chat: document=%s model=%s context=%d chars history=%d",
		documentID, s.model.ModelName(), len(content.Text), len(history))

	answer, err := s.model.Answer(ctx, truncateRunes(content.Text, maxContextRunes), question, history)
	if err != nil {
		return "", fmt.Errorf("asking %s: %w", s.model.ModelName(), err)
	}
	return answer, nil
}
