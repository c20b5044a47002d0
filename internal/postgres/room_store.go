package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (t *pgTx) Room(ctx context.Context, roomID string) (*domain.CallRoom, error) {
	var rm domain.CallRoom
	query := `SELECT id, call_type, creator, created_at FROM call_rooms WHERE id=$1`
	err := t.q.QueryRow(ctx, query, roomID).
		Scan(&rm.ID, &rm.CallType, &rm.Creator, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func (t *pgTx) InsertRoom(ctx context.Context, room *domain.CallRoom) error {
	query := `
		INSERT INTO call_rooms (id, call_type, creator, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := t.q.Exec(ctx, query, room.ID, room.CallType, room.Creator, room.CreatedAt)
	return err
}

// DeleteRoom: строки участников уходят каскадом (FK ON DELETE CASCADE).
func (t *pgTx) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := t.q.Exec(ctx, `DELETE FROM call_rooms WHERE id=$1`, roomID)
	return err
}
