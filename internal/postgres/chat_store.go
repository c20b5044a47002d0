package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/service"

	"github.com/jackc/pgx/v5"
)

func (t *pgTx) InsertMessage(ctx context.Context, m *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (sender, text, sent_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	return t.q.QueryRow(ctx, query, m.Sender, m.Text, m.SentAt).Scan(&m.ID)
}

func (t *pgTx) MessagesBefore(ctx context.Context, before *service.Cursor, limit int) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, sender, text, sent_at
		FROM chat_messages
		WHERE ($1::timestamptz IS NULL
		       OR sent_at < $1
		       OR (sent_at = $1 AND id < $2))
		ORDER BY sent_at DESC, id DESC
		LIMIT $3`

	var sentAt any
	var id any
	if before != nil {
		sentAt = before.SentAt
		id = before.ID
	}

	rows, err := t.q.Query(ctx, query, sentAt, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (t *pgTx) User(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	var u domain.User
	query := `SELECT identity, nickname, connected_at FROM users WHERE identity=$1`
	err := t.q.QueryRow(ctx, query, identity).Scan(&u.Identity, &u.Nickname, &u.ConnectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (t *pgTx) UpsertUser(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (identity, nickname, connected_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (identity) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			connected_at = EXCLUDED.connected_at`
	_, err := t.q.Exec(ctx, query, u.Identity, u.Nickname, u.ConnectedAt)
	return err
}

func (t *pgTx) DeleteUser(ctx context.Context, identity domain.Identity) error {
	_, err := t.q.Exec(ctx, `DELETE FROM users WHERE identity=$1`, identity)
	return err
}
