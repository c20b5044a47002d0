package service_test

import (
	"context"
	"testing"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/memory"
	"github.com/cwrk-planet/call-service/internal/service"

	"github.com/stretchr/testify/require"
)

type fakePresence struct {
	online map[domain.Identity]bool
}

func (f *fakePresence) IsOnline(_ context.Context, id domain.Identity) (bool, error) {
	return f.online[id], nil
}

type captureSink struct {
	audio []domain.AudioFrameEvent
	video []domain.VideoFrameEvent
}

func (s *captureSink) EmitAudioFrame(ev domain.AudioFrameEvent) { s.audio = append(s.audio, ev) }
func (s *captureSink) EmitVideoFrame(ev domain.VideoFrameEvent) { s.video = append(s.video, ev) }

type env struct {
	store    *memory.Store
	presence *fakePresence
	sink     *captureSink

	calls *service.CallService
	mod   *service.ModerationService
	media *service.MediaService
	chat  *service.ChatService
	users *service.UserService
}

func newEnv(online ...domain.Identity) *env {
	st := memory.NewStore()
	p := &fakePresence{online: make(map[domain.Identity]bool)}
	for _, id := range online {
		p.online[id] = true
	}
	sink := &captureSink{}
	return &env{
		store:    st,
		presence: p,
		sink:     sink,
		calls:    service.NewCallService(st, p),
		mod:      service.NewModerationService(st),
		media:    service.NewMediaService(st, sink),
		chat:     service.NewChatService(st),
		users:    service.NewUserService(st),
	}
}

func (e *env) participants(t *testing.T, roomID string) []domain.CallParticipant {
	t.Helper()
	var out []domain.CallParticipant
	err := e.store.Atomic(context.Background(), func(ctx context.Context, tx service.Tx) error {
		var err error
		out, err = tx.ParticipantsByRoom(ctx, roomID)
		return err
	})
	require.NoError(t, err)
	return out
}

func (e *env) participant(t *testing.T, roomID string, id domain.Identity) *domain.CallParticipant {
	t.Helper()
	var out *domain.CallParticipant
	err := e.store.Atomic(context.Background(), func(ctx context.Context, tx service.Tx) error {
		var err error
		out, err = tx.Participant(ctx, roomID, id)
		return err
	})
	require.NoError(t, err)
	return out
}

func (e *env) roomExists(t *testing.T, roomID string) bool {
	t.Helper()
	exists := false
	err := e.store.Atomic(context.Background(), func(ctx context.Context, tx service.Tx) error {
		_, err := tx.Room(ctx, roomID)
		if err == nil {
			exists = true
			return nil
		}
		if err == domain.ErrRoomNotFound {
			return nil
		}
		return err
	})
	require.NoError(t, err)
	return exists
}

// не более одной joined-строки на identity во всём хранилище
func (e *env) assertSingleJoined(t *testing.T, ids ...domain.Identity) {
	t.Helper()
	err := e.store.Atomic(context.Background(), func(ctx context.Context, tx service.Tx) error {
		for _, id := range ids {
			rows, err := tx.ParticipantsByIdentity(ctx, id)
			if err != nil {
				return err
			}
			joined := 0
			for _, p := range rows {
				if p.Joined() {
					joined++
				}
			}
			require.LessOrEqualf(t, joined, 1, "identity %s has %d joined rows", id, joined)
		}
		return nil
	})
	require.NoError(t, err)
}

// типовая комната: host joined, guests invited
func mustCreateRoom(t *testing.T, e *env, host domain.Identity, callType domain.CallType, guests ...domain.Identity) string {
	t.Helper()
	roomID, err := e.calls.CreateRoom(context.Background(), host, guests, callType)
	require.NoError(t, err)
	return roomID
}

func mustJoin(t *testing.T, e *env, id domain.Identity, roomID string) {
	t.Helper()
	require.NoError(t, e.calls.JoinRoom(context.Background(), id, roomID))
}
