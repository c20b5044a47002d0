package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/service"

	"github.com/stretchr/testify/require"
)

const (
	alice = domain.Identity("alice")
	bob   = domain.Identity("bob")
	carol = domain.Identity("carol")
	dave  = domain.Identity("dave")
)

func ctxb() context.Context { return context.Background() }

func TestCreateRoom_Validation(t *testing.T) {
	e := newEnv(bob, carol)

	_, err := e.calls.CreateRoom(ctxb(), alice, nil, domain.CallVoice)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))

	var many []domain.Identity
	for i := 0; i < 16; i++ {
		many = append(many, domain.Identity(fmt.Sprintf("user-%02d", i)))
	}
	_, err = e.calls.CreateRoom(ctxb(), alice, many, domain.CallVoice)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = e.calls.CreateRoom(ctxb(), alice, []domain.Identity{bob, bob}, domain.CallVoice)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = e.calls.CreateRoom(ctxb(), alice, []domain.Identity{bob, alice}, domain.CallVoice)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = e.calls.CreateRoom(ctxb(), alice, []domain.Identity{bob}, domain.CallType("screen"))
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCreateRoom_MaxTargets(t *testing.T) {
	var targets []domain.Identity
	for i := 0; i < 15; i++ {
		targets = append(targets, domain.Identity(fmt.Sprintf("user-%02d", i)))
	}
	e := newEnv(targets...)

	roomID, err := e.calls.CreateRoom(ctxb(), alice, targets, domain.CallVoice)
	require.NoError(t, err)
	require.Len(t, e.participants(t, roomID), 16)
}

func TestCreateRoom_Success(t *testing.T) {
	e := newEnv(bob, carol)

	roomID := mustCreateRoom(t, e, alice, domain.CallVideo, bob, carol)

	rows := e.participants(t, roomID)
	require.Len(t, rows, 3)

	creator := e.participant(t, roomID, alice)
	require.NotNil(t, creator)
	require.Equal(t, domain.StateJoined, creator.State)
	require.NotNil(t, creator.JoinedAt)
	require.Equal(t, alice, creator.InvitedBy)

	for _, id := range []domain.Identity{bob, carol} {
		p := e.participant(t, roomID, id)
		require.NotNil(t, p)
		require.Equal(t, domain.StateInvited, p.State)
		require.Nil(t, p.JoinedAt)
		require.Equal(t, alice, p.InvitedBy)
	}
	e.assertSingleJoined(t, alice, bob, carol)
}

func TestCreateRoom_TargetOffline(t *testing.T) {
	e := newEnv(bob) // carol офлайн

	_, err := e.calls.CreateRoom(ctxb(), alice, []domain.Identity{bob, carol}, domain.CallVoice)
	require.ErrorIs(t, err, domain.ErrTargetOffline)
}

func TestCreateRoom_BusyCreator(t *testing.T) {
	e := newEnv(bob, carol)
	mustCreateRoom(t, e, alice, domain.CallVoice, bob)

	_, err := e.calls.CreateRoom(ctxb(), alice, []domain.Identity{carol}, domain.CallVoice)
	require.ErrorIs(t, err, domain.ErrBusyInCall)
}

func TestCreateRoom_BusyTarget(t *testing.T) {
	e := newEnv(bob, carol, dave)
	first := mustCreateRoom(t, e, bob, domain.CallVoice, carol)
	mustJoin(t, e, carol, first)

	// carol уже joined в другой комнате; неуспех не оставляет следов
	_, err := e.calls.CreateRoom(ctxb(), alice, []domain.Identity{dave, carol}, domain.CallVoice)
	require.ErrorIs(t, err, domain.ErrBusyInCall)

	var rows []domain.CallParticipant
	require.NoError(t, e.store.Atomic(ctxb(), func(ctx context.Context, tx service.Tx) error {
		var err error
		rows, err = tx.ParticipantsByIdentity(ctx, dave)
		return err
	}))
	require.Empty(t, rows)
}

func TestInviteToRoom(t *testing.T) {
	e := newEnv(bob, carol, dave)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob)

	// чужой — не может приглашать
	err := e.calls.InviteToRoom(ctxb(), carol, roomID, dave)
	require.ErrorIs(t, err, domain.ErrNotParticipant)

	// invited, но не joined — тоже нет
	err = e.calls.InviteToRoom(ctxb(), bob, roomID, dave)
	require.ErrorIs(t, err, domain.ErrNotJoined)

	// уже есть строка в комнате
	err = e.calls.InviteToRoom(ctxb(), alice, roomID, bob)
	require.ErrorIs(t, err, domain.ErrAlreadyInRoom)

	// офлайн
	err = e.calls.InviteToRoom(ctxb(), alice, roomID, "eve")
	require.ErrorIs(t, err, domain.ErrTargetOffline)

	require.NoError(t, e.calls.InviteToRoom(ctxb(), alice, roomID, dave))
	p := e.participant(t, roomID, dave)
	require.NotNil(t, p)
	require.Equal(t, domain.StateInvited, p.State)
	require.Equal(t, alice, p.InvitedBy)
}

func TestInviteToRoom_TargetBusyElsewhere(t *testing.T) {
	e := newEnv(bob, carol, dave)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob)
	mustCreateRoom(t, e, carol, domain.CallVoice, dave)

	err := e.calls.InviteToRoom(ctxb(), alice, roomID, carol)
	require.ErrorIs(t, err, domain.ErrBusyInCall)
}

func TestJoinRoom(t *testing.T) {
	e := newEnv(bob, carol)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob)

	// без приглашения
	err := e.calls.JoinRoom(ctxb(), carol, roomID)
	require.ErrorIs(t, err, domain.ErrNotInvited)

	require.NoError(t, e.calls.JoinRoom(ctxb(), bob, roomID))
	p := e.participant(t, roomID, bob)
	require.Equal(t, domain.StateJoined, p.State)
	require.NotNil(t, p.JoinedAt)

	// повторный join
	err = e.calls.JoinRoom(ctxb(), bob, roomID)
	require.ErrorIs(t, err, domain.ErrAlreadyJoined)

	e.assertSingleJoined(t, alice, bob)
}

func TestJoinRoom_BusyElsewhere(t *testing.T) {
	e := newEnv(bob, carol)
	first := mustCreateRoom(t, e, alice, domain.CallVoice, carol)
	second := mustCreateRoom(t, e, bob, domain.CallVoice, carol)
	mustJoin(t, e, carol, first)

	err := e.calls.JoinRoom(ctxb(), carol, second)
	require.ErrorIs(t, err, domain.ErrBusyInCall)
	e.assertSingleJoined(t, carol)
}

func TestJoinRoom_Offline(t *testing.T) {
	e := newEnv(bob)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob)

	e.presence.online[bob] = false
	err := e.calls.JoinRoom(ctxb(), bob, roomID)
	require.ErrorIs(t, err, domain.ErrTargetOffline)
}

func TestDeclineInvite(t *testing.T) {
	e := newEnv(bob, carol)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob, carol)

	require.NoError(t, e.calls.DeclineInvite(ctxb(), carol, roomID))
	require.Nil(t, e.participant(t, roomID, carol))
	// комната живёт, пока есть joined
	require.True(t, e.roomExists(t, roomID))

	err := e.calls.DeclineInvite(ctxb(), carol, roomID)
	require.ErrorIs(t, err, domain.ErrNotInvited)

	// joined-строку decline не снимает
	err = e.calls.DeclineInvite(ctxb(), alice, roomID)
	require.ErrorIs(t, err, domain.ErrAlreadyJoined)
}

func TestLeaveRoom_CascadeCleanup(t *testing.T) {
	e := newEnv(bob, carol)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob, carol)

	// уходит последний joined — комната и остаточные приглашения исчезают
	require.NoError(t, e.calls.LeaveRoom(ctxb(), alice, roomID))
	require.False(t, e.roomExists(t, roomID))
	require.Empty(t, e.participants(t, roomID))

	err := e.calls.LeaveRoom(ctxb(), alice, roomID)
	require.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestLeaveRoom_OthersRemain(t *testing.T) {
	e := newEnv(bob, carol)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob, carol)
	mustJoin(t, e, bob, roomID)

	require.NoError(t, e.calls.LeaveRoom(ctxb(), alice, roomID))
	require.True(t, e.roomExists(t, roomID))
	require.Nil(t, e.participant(t, roomID, alice))
	// приглашение carol не тронуто
	require.NotNil(t, e.participant(t, roomID, carol))
}

func TestKickParticipant(t *testing.T) {
	e := newEnv(bob, carol)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob, carol)
	mustJoin(t, e, bob, roomID)

	err := e.calls.KickParticipant(ctxb(), bob, roomID, carol)
	require.ErrorIs(t, err, domain.ErrNotHost)

	err = e.calls.KickParticipant(ctxb(), alice, roomID, alice)
	require.ErrorIs(t, err, domain.ErrSelfTarget)

	err = e.calls.KickParticipant(ctxb(), alice, roomID, dave)
	require.ErrorIs(t, err, domain.ErrTargetNotInRoom)

	require.NoError(t, e.calls.KickParticipant(ctxb(), alice, roomID, bob))
	require.Nil(t, e.participant(t, roomID, bob))
	require.True(t, e.roomExists(t, roomID))
}

func TestKick_LastJoinedTriggersCleanup(t *testing.T) {
	e := newEnv(bob, carol)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob, carol)
	mustJoin(t, e, bob, roomID)
	require.NoError(t, e.calls.LeaveRoom(ctxb(), alice, roomID))

	// bob — последний joined; хост уже вышел, но создатель остаётся хостом
	require.NoError(t, e.calls.KickParticipant(ctxb(), alice, roomID, bob))
	require.False(t, e.roomExists(t, roomID))
	require.Empty(t, e.participants(t, roomID))
}

func TestPresenceLost(t *testing.T) {
	e := newEnv(bob, carol, dave)
	require.NoError(t, e.users.Connected(ctxb(), bob))

	// bob joined в одной комнате, invited в другой; приглашение во вторую
	// приходит до join — joined нельзя приглашать
	first := mustCreateRoom(t, e, alice, domain.CallVoice, bob)
	second := mustCreateRoom(t, e, carol, domain.CallVoice, bob, dave)
	mustJoin(t, e, bob, first)

	require.NoError(t, e.calls.PresenceLost(ctxb(), bob))

	require.Nil(t, e.participant(t, first, bob))
	require.Nil(t, e.participant(t, second, bob))
	// first: alice всё ещё joined, комната живёт
	require.True(t, e.roomExists(t, first))
	// second не трогаем: bob там был лишь invited
	require.True(t, e.roomExists(t, second))
}

func TestPresenceLost_LastJoined(t *testing.T) {
	e := newEnv(bob)
	roomID := mustCreateRoom(t, e, alice, domain.CallVoice, bob)

	require.NoError(t, e.calls.PresenceLost(ctxb(), alice))
	require.False(t, e.roomExists(t, roomID))
	require.Empty(t, e.participants(t, roomID))
}

// сценарий целиком: create → join → mute_all → тихий дроп → decline → kick → leave
func TestRoomLifecycleScenario(t *testing.T) {
	e := newEnv(bob, carol)

	roomID := mustCreateRoom(t, e, alice, domain.CallVideo, bob, carol)
	require.Len(t, e.participants(t, roomID), 3)

	mustJoin(t, e, bob, roomID)

	require.NoError(t, e.mod.MuteAll(ctxb(), alice, roomID))
	pb := e.participant(t, roomID, bob)
	require.True(t, pb.ServerMuted)
	require.True(t, pb.Muted)
	pa := e.participant(t, roomID, alice)
	require.False(t, pa.ServerMuted)
	require.False(t, pa.Muted)

	// кадр от замьюченного: успех без событий
	require.NoError(t, e.media.SendAudioFrame(ctxb(), bob, roomID, 1, 16000, 1, 0.5, []byte{1, 2, 3}))
	require.Empty(t, e.sink.audio)

	require.NoError(t, e.calls.DeclineInvite(ctxb(), carol, roomID))
	require.True(t, e.roomExists(t, roomID))

	require.NoError(t, e.calls.KickParticipant(ctxb(), alice, roomID, bob))
	require.True(t, e.roomExists(t, roomID))
	require.Len(t, e.participants(t, roomID), 1)

	require.NoError(t, e.calls.LeaveRoom(ctxb(), alice, roomID))
	require.False(t, e.roomExists(t, roomID))
	require.Empty(t, e.participants(t, roomID))
}
