package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/model"
	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
	"github.com/docuchat/docuchat/internal/pkg/timeutil"
	"github.com/docuchat/docuchat/internal/rag"
	"github.com/docuchat/docuchat/internal/repo"
	"github.com/docuchat/docuchat/internal/service"
	"github.com/docuchat/docuchat/test/testutil"
)

// scopeRecorder captures the scope set the chat service resolves before
// answering.
type scopeRecorder struct {
	scope  []string
	answer string
}

func (r *scopeRecorder) GetResponse(ctx context.Context, userID, query string, scope []string) (string, error) {
	r.scope = scope
	return r.answer, nil
}

func newChatService(db *sql.DB, responder rag.Responder) *service.ChatService {
	return service.NewChatService(
		repo.NewChatRepo(db),
		repo.NewMessageRepo(db),
		repo.NewDocumentRepo(db),
		responder,
	)
}

func seedTestUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	now := timeutil.NowUnix()
	err := repo.NewUserRepo(db).Create(context.Background(), &model.User{
		ID: id, Email: id + "@example.com", PasswordHash: "x", Ctime: now, Mtime: now,
	})
	require.NoError(t, err)
}

func seedTestDocument(t *testing.T, db *sql.DB, userID, docID, status string) {
	t.Helper()
	now := timeutil.NowUnix()
	err := repo.NewDocumentRepo(db).Create(context.Background(), &model.Document{
		ID: docID, UserID: userID, Filename: docID + ".md", Status: status, Ctime: now, Mtime: now,
	})
	require.NoError(t, err)
}

func TestChatSendMessagePersistsBothSides(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedTestUser(t, db, "user-1")
	recorder := &scopeRecorder{answer: "an assistant answer"}
	chats := newChatService(db, recorder)

	chat, err := chats.Create(context.Background(), "user-1", "")
	require.NoError(t, err)
	require.Equal(t, "New Chat", chat.Title)

	userMsg, assistantMsg, err := chats.SendMessage(context.Background(), "user-1", chat.ID, "  what is this about?  ")
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, userMsg.Role)
	require.Equal(t, "what is this about?", userMsg.Content)
	require.Equal(t, model.RoleAssistant, assistantMsg.Role)
	require.Equal(t, "an assistant answer", assistantMsg.Content)

	history, err := chats.ListMessages(context.Background(), "user-1", chat.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestChatSendMessageScopeOnlyReadyDocuments(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedTestUser(t, db, "user-1")
	seedTestDocument(t, db, "user-1", "doc-ready", model.StatusReady)
	seedTestDocument(t, db, "user-1", "doc-processing", model.StatusProcessing)
	seedTestDocument(t, db, "user-1", "doc-failed", model.StatusFailed)

	recorder := &scopeRecorder{answer: "ok"}
	chats := newChatService(db, recorder)

	chat, err := chats.Create(context.Background(), "user-1", "scoped")
	require.NoError(t, err)
	for _, docID := range []string{"doc-ready", "doc-processing", "doc-failed"} {
		require.NoError(t, chats.LinkDocument(context.Background(), "user-1", chat.ID, docID))
	}

	_, _, err = chats.SendMessage(context.Background(), "user-1", chat.ID, "question")
	require.NoError(t, err)
	require.Equal(t, []string{"doc-ready"}, recorder.scope)
}

func TestChatSendMessageEmptyScope(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedTestUser(t, db, "user-1")
	recorder := &scopeRecorder{answer: "ignored"}
	chats := newChatService(db, recorder)

	chat, err := chats.Create(context.Background(), "user-1", "empty")
	require.NoError(t, err)

	_, _, err = chats.SendMessage(context.Background(), "user-1", chat.ID, "question")
	require.NoError(t, err)
	require.Empty(t, recorder.scope)
}

func TestChatSendMessageValidation(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedTestUser(t, db, "user-1")
	chats := newChatService(db, &scopeRecorder{answer: "ok"})

	chat, err := chats.Create(context.Background(), "user-1", "c")
	require.NoError(t, err)

	_, _, err = chats.SendMessage(context.Background(), "user-1", chat.ID, "   ")
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, _, err = chats.SendMessage(context.Background(), "user-1", "missing-chat", "question")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestChatLinkDocumentOwnership(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedTestUser(t, db, "user-1")
	seedTestUser(t, db, "user-2")
	seedTestDocument(t, db, "user-2", "their-doc", model.StatusReady)

	chats := newChatService(db, &scopeRecorder{answer: "ok"})
	chat, err := chats.Create(context.Background(), "user-1", "mine")
	require.NoError(t, err)

	// cannot link another user's document
	err = chats.LinkDocument(context.Background(), "user-1", chat.ID, "their-doc")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
