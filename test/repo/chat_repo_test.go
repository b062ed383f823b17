package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/model"
	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
	"github.com/docuchat/docuchat/internal/pkg/timeutil"
	"github.com/docuchat/docuchat/internal/repo"
	"github.com/docuchat/docuchat/test/testutil"
)

func seedChat(t *testing.T, chats *repo.ChatRepo, userID, chatID string) {
	t.Helper()
	err := chats.Create(context.Background(), &model.Chat{
		ID:     chatID,
		UserID: userID,
		Title:  "chat",
		Ctime:  timeutil.NowUnix(),
	})
	require.NoError(t, err)
}

func TestChatRepoOwnership(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	seedUser(t, db, "user-2")

	chats := repo.NewChatRepo(db)
	seedChat(t, chats, "user-1", "chat-1")

	_, err := chats.GetByID(context.Background(), "user-1", "chat-1")
	require.NoError(t, err)

	_, err = chats.GetByID(context.Background(), "user-2", "chat-1")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	err = chats.Delete(context.Background(), "user-2", "chat-1")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, chats.Delete(context.Background(), "user-1", "chat-1"))
}

func TestChatRepoLinkUnlinkDocuments(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	seedDocument(t, db, "user-1", "doc-a", model.StatusReady)
	seedDocument(t, db, "user-1", "doc-b", model.StatusReady)

	chats := repo.NewChatRepo(db)
	seedChat(t, chats, "user-1", "chat-1")

	require.NoError(t, chats.LinkDocument(context.Background(), "chat-1", "doc-a", 1))
	require.NoError(t, chats.LinkDocument(context.Background(), "chat-1", "doc-b", 2))
	// re-linking is a no-op
	require.NoError(t, chats.LinkDocument(context.Background(), "chat-1", "doc-a", 3))

	ids, err := chats.LinkedDocumentIDs(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Equal(t, []string{"doc-a", "doc-b"}, ids)

	require.NoError(t, chats.UnlinkDocument(context.Background(), "chat-1", "doc-a"))
	ids, err = chats.LinkedDocumentIDs(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Equal(t, []string{"doc-b"}, ids)
}

func TestChatRepoLinksCascadeWithDocument(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	seedDocument(t, db, "user-1", "doc-a", model.StatusReady)

	chats := repo.NewChatRepo(db)
	seedChat(t, chats, "user-1", "chat-1")
	require.NoError(t, chats.LinkDocument(context.Background(), "chat-1", "doc-a", 1))

	docs := repo.NewDocumentRepo(db)
	require.NoError(t, docs.Delete(context.Background(), "user-1", "doc-a"))

	ids, err := chats.LinkedDocumentIDs(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestMessageRepoOrdering(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	chats := repo.NewChatRepo(db)
	seedChat(t, chats, "user-1", "chat-1")

	messages := repo.NewMessageRepo(db)
	first := &model.Message{ChatID: "chat-1", Role: model.RoleUser, Content: "question", Ctime: 1}
	second := &model.Message{ChatID: "chat-1", Role: model.RoleAssistant, Content: "answer", Ctime: 1}
	require.NoError(t, messages.Create(context.Background(), first))
	require.NoError(t, messages.Create(context.Background(), second))
	require.Greater(t, second.ID, first.ID)

	history, err := messages.ListByChat(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, model.RoleUser, history[0].Role)
	require.Equal(t, model.RoleAssistant, history[1].Role)
}
