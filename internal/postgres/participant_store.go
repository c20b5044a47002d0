package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

const participantColumns = `id, room_id, identity, state, invited_by, joined_at, muted, deafened, cam_off, server_muted`

func scanParticipant(row pgx.Row) (*domain.CallParticipant, error) {
	var p domain.CallParticipant
	err := row.Scan(
		&p.ID, &p.RoomID, &p.Identity, &p.State, &p.InvitedBy,
		&p.JoinedAt, &p.Muted, &p.Deafened, &p.CamOff, &p.ServerMuted,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Participant: (nil, nil), если строки нет.
func (t *pgTx) Participant(ctx context.Context, roomID string, identity domain.Identity) (*domain.CallParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM call_participants WHERE room_id=$1 AND identity=$2`
	p, err := scanParticipant(t.q.QueryRow(ctx, query, roomID, identity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (t *pgTx) participants(ctx context.Context, query string, arg any) ([]domain.CallParticipant, error) {
	rows, err := t.q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CallParticipant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (t *pgTx) ParticipantsByRoom(ctx context.Context, roomID string) ([]domain.CallParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM call_participants WHERE room_id=$1 ORDER BY id`
	return t.participants(ctx, query, roomID)
}

func (t *pgTx) ParticipantsByIdentity(ctx context.Context, identity domain.Identity) ([]domain.CallParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM call_participants WHERE identity=$1 ORDER BY id`
	return t.participants(ctx, query, identity)
}

func (t *pgTx) InsertParticipant(ctx context.Context, p *domain.CallParticipant) error {
	query := `
		INSERT INTO call_participants
			(id, room_id, identity, state, invited_by, joined_at, muted, deafened, cam_off, server_muted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := t.q.Exec(ctx, query,
		p.ID, p.RoomID, p.Identity, p.State, p.InvitedBy,
		p.JoinedAt, p.Muted, p.Deafened, p.CamOff, p.ServerMuted)
	return err
}

func (t *pgTx) UpdateParticipant(ctx context.Context, p *domain.CallParticipant) error {
	query := `
		UPDATE call_participants
		SET state=$2, joined_at=$3, muted=$4, deafened=$5, cam_off=$6, server_muted=$7
		WHERE id=$1`
	_, err := t.q.Exec(ctx, query,
		p.ID, p.State, p.JoinedAt, p.Muted, p.Deafened, p.CamOff, p.ServerMuted)
	return err
}

func (t *pgTx) DeleteParticipant(ctx context.Context, participantID string) error {
	_, err := t.q.Exec(ctx, `DELETE FROM call_participants WHERE id=$1`, participantID)
	return err
}
