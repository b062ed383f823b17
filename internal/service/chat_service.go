package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuchat/docuchat/internal/model"
	"github.com/docuchat/docuchat/internal/pkg/errors"
	"github.com/docuchat/docuchat/internal/pkg/timeutil"
	"github.com/docuchat/docuchat/internal/rag"
	"github.com/docuchat/docuchat/internal/repo"
)

type ChatService struct {
	chats     *repo.ChatRepo
	messages  *repo.MessageRepo
	docs      DocumentStore
	responder rag.Responder
}

func NewChatService(chats *repo.ChatRepo, messages *repo.MessageRepo, docs DocumentStore, responder rag.Responder) *ChatService {
	return &ChatService{
		chats:     chats,
		messages:  messages,
		docs:      docs,
		responder: responder,
	}
}

func (s *ChatService) Create(ctx context.Context, userID, title string) (*model.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Chat"
	}
	chat := &model.Chat{
		ID:     newID(),
		UserID: userID,
		Title:  title,
		Ctime:  timeutil.NowUnix(),
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) List(ctx context.Context, userID string) ([]*model.Chat, error) {
	return s.chats.ListByUser(ctx, userID)
}

func (s *ChatService) Get(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	return s.chats.GetByID(ctx, userID, chatID)
}

func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	return s.chats.Delete(ctx, userID, chatID)
}

// LinkDocument attaches one of the user's documents to the chat so its
// chunks become searchable from that chat.
func (s *ChatService) LinkDocument(ctx context.Context, userID, chatID, docID string) error {
	if _, err := s.chats.GetByID(ctx, userID, chatID); err != nil {
		return err
	}
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return err
	}
	return s.chats.LinkDocument(ctx, chatID, docID, timeutil.NowUnix())
}

func (s *ChatService) UnlinkDocument(ctx context.Context, userID, chatID, docID string) error {
	if _, err := s.chats.GetByID(ctx, userID, chatID); err != nil {
		return err
	}
	return s.chats.UnlinkDocument(ctx, chatID, docID)
}

func (s *ChatService) ListLinkedDocuments(ctx context.Context, userID, chatID string) ([]model.Document, error) {
	if _, err := s.chats.GetByID(ctx, userID, chatID); err != nil {
		return nil, err
	}
	ids, err := s.chats.LinkedDocumentIDs(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.docs.ListByIDs(ctx, ids, "")
}

func (s *ChatService) ListMessages(ctx context.Context, userID, chatID string) ([]*model.Message, error) {
	if _, err := s.chats.GetByID(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.messages.ListByChat(ctx, chatID)
}

// SendMessage stores the user's question, answers it over the chat's linked
// ready documents, and stores the answer. Only ready documents are searched;
// documents still processing or failed are invisible to retrieval.
func (s *ChatService) SendMessage(ctx context.Context, userID, chatID, content string) (*model.Message, *model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, fmt.Errorf("%w: message content is required", errors.ErrInvalid)
	}
	if _, err := s.chats.GetByID(ctx, userID, chatID); err != nil {
		return nil, nil, err
	}
	userMsg := &model.Message{
		ChatID:  chatID,
		Role:    model.RoleUser,
		Content: content,
		Ctime:   timeutil.NowUnix(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return nil, nil, err
	}
	scope, err := s.readyScope(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	answer, err := s.responder.GetResponse(ctx, userID, content, scope)
	if err != nil {
		return nil, nil, err
	}
	assistantMsg := &model.Message{
		ChatID:  chatID,
		Role:    model.RoleAssistant,
		Content: answer,
		Ctime:   timeutil.NowUnix(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		return nil, nil, err
	}
	return userMsg, assistantMsg, nil
}

func (s *ChatService) readyScope(ctx context.Context, chatID string) ([]string, error) {
	ids, err := s.chats.LinkedDocumentIDs(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	ready, err := s.docs.ListByIDs(ctx, ids, model.StatusReady)
	if err != nil {
		return nil, err
	}
	scope := make([]string, 0, len(ready))
	for _, doc := range ready {
		scope = append(scope, doc.ID)
	}
	return scope, nil
}
