package domain

import "time"

type ParticipantState string

const (
	StateInvited ParticipantState = "invited"
	StateJoined  ParticipantState = "joined"
)

// CallParticipant — строка членства (room_id, identity).
// Инварианты после каждой зафиксированной операции:
//   - не более одной joined-строки на identity во всём хранилище;
//   - server_muted=true влечёт muted=true;
//   - не более одной строки на пару (room_id, identity).
type CallParticipant struct {
	ID          string           `db:"id"`
	RoomID      string           `db:"room_id"`
	Identity    Identity         `db:"identity"`
	State       ParticipantState `db:"state"`
	InvitedBy   Identity         `db:"invited_by"`
	JoinedAt    *time.Time       `db:"joined_at"`
	Muted       bool             `db:"muted"`
	Deafened    bool             `db:"deafened"`
	CamOff      bool             `db:"cam_off"`
	ServerMuted bool             `db:"server_muted"`
}

func (p *CallParticipant) Joined() bool { return p.State == StateJoined }
