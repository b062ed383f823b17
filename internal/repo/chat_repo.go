package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docuchat/docuchat/internal/model"
	"github.com/docuchat/docuchat/internal/pkg/dbutil"
	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
)

var chatColumns = []string{"id", "user_id", "title", "ctime"}

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) Create(ctx context.Context, chat *model.Chat) error {
	data := map[string]interface{}{
		"id":      chat.ID,
		"user_id": chat.UserID,
		"title":   chat.Title,
		"ctime":   chat.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chats", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ChatRepo) GetByID(ctx context.Context, userID string, chatID string) (*model.Chat, error) {
	where := map[string]interface{}{"id": chatID, "user_id": userID}
	sqlStr, args, err := builder.BuildSelect("chats", where, chatColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var chat model.Chat
	if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.Ctime); err != nil {
		return nil, err
	}
	return &chat, rows.Err()
}

func (r *ChatRepo) ListByUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
	}
	sqlStr, args, err := builder.BuildSelect("chats", where, chatColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var chats []*model.Chat
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.Ctime); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	return chats, rows.Err()
}

func (r *ChatRepo) Delete(ctx context.Context, userID string, chatID string) error {
	where := map[string]interface{}{"id": chatID, "user_id": userID}
	sqlStr, args, err := builder.BuildDelete("chats", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// LinkDocument attaches a document to a chat. Linking twice is a no-op.
func (r *ChatRepo) LinkDocument(ctx context.Context, chatID string, documentID string, now int64) error {
	data := map[string]interface{}{
		"chat_id":     chatID,
		"document_id": documentID,
		"ctime":       now,
	}
	sqlStr, args, err := builder.BuildInsert("chat_documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil && dbutil.IsConflict(err) {
		return nil
	}
	return err
}

func (r *ChatRepo) UnlinkDocument(ctx context.Context, chatID string, documentID string) error {
	where := map[string]interface{}{"chat_id": chatID, "document_id": documentID}
	sqlStr, args, err := builder.BuildDelete("chat_documents", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// LinkedDocumentIDs returns the ids of all documents attached to a chat,
// oldest link first.
func (r *ChatRepo) LinkedDocumentIDs(ctx context.Context, chatID string) ([]string, error) {
	where := map[string]interface{}{
		"chat_id":  chatID,
		"_orderby": "ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("chat_documents", where, []string{"document_id"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
