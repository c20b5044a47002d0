package domain

import "time"

type CallType string

const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

func (t CallType) Valid() bool {
	return t == CallVoice || t == CallVideo
}

// CallRoom существует, только пока в ней есть хотя бы один joined-участник.
// Удаляется исключительно каскадной очисткой, напрямую никогда.
type CallRoom struct {
	ID        string    `db:"id"`
	CallType  CallType  `db:"call_type"`
	Creator   Identity  `db:"creator"`
	CreatedAt time.Time `db:"created_at"`
}
