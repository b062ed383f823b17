package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docuchat/docuchat/internal/model"
	"github.com/docuchat/docuchat/internal/pkg/dbutil"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a message and fills in its server-assigned id.
func (r *MessageRepo) Create(ctx context.Context, message *model.Message) error {
	const query = `
		INSERT INTO messages (chat_id, role, content, ctime)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		message.ChatID,
		message.Role,
		message.Content,
		message.Ctime,
	).Scan(&message.ID)
}

// ListByChat returns the full message history of a chat in send order.
func (r *MessageRepo) ListByChat(ctx context.Context, chatID string) ([]*model.Message, error) {
	where := map[string]interface{}{
		"chat_id":  chatID,
		"_orderby": "id asc",
	}
	sqlStr, args, err := builder.BuildSelect("messages", where, []string{"id", "chat_id", "role", "content", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var messages []*model.Message
	for rows.Next() {
		var message model.Message
		if err := rows.Scan(&message.ID, &message.ChatID, &message.Role, &message.Content, &message.Ctime); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}
	return messages, rows.Err()
}
