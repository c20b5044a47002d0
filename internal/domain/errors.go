package domain

import (
	"errors"
	"fmt"
)

// Категории ошибок операций. Операция возвращает успех либо ровно одну
// категоризированную ошибку; частично применённых мутаций не бывает.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindAuthorization
	KindState
	KindResource
)

type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// KindOf достаёт категорию из цепочки ошибок; KindUnknown для чужих ошибок.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Statef(format string, args ...any) error {
	return &Error{Kind: KindState, Msg: fmt.Sprintf(format, args...)}
}

var (
	// state
	ErrRoomNotFound    = &Error{Kind: KindState, Msg: "room not found"}
	ErrNotInvited      = &Error{Kind: KindState, Msg: "no invite for this room"}
	ErrAlreadyJoined   = &Error{Kind: KindState, Msg: "already joined this room"}
	ErrAlreadyInRoom   = &Error{Kind: KindState, Msg: "already invited to this room"}
	ErrBusyInCall      = &Error{Kind: KindState, Msg: "identity is already in an active call"}
	ErrTargetOffline   = &Error{Kind: KindState, Msg: "target is not online"}
	ErrNotJoined       = &Error{Kind: KindState, Msg: "participant has not joined"}
	ErrNotVideoCall    = &Error{Kind: KindState, Msg: "not a video call"}
	ErrTargetNotInRoom = &Error{Kind: KindState, Msg: "target is not in the room"}
	ErrUserNotFound    = &Error{Kind: KindState, Msg: "user not found"}

	// authorization
	ErrNotParticipant = &Error{Kind: KindAuthorization, Msg: "not a participant of this room"}
	ErrNotHost        = &Error{Kind: KindAuthorization, Msg: "only the room creator can do this"}
	ErrSelfTarget     = &Error{Kind: KindAuthorization, Msg: "cannot target yourself"}

	// resource
	ErrIDGeneration = &Error{Kind: KindResource, Msg: "failed to generate id"}
)
