package service

import (
	"context"

	"github.com/cwrk-planet/call-service/internal/domain"
)

// ModerationService — привилегии хоста и self-service медиатогглы.
// Хост — это создатель комнаты, проверка простым сравнением.
type ModerationService struct {
	store Store
}

func NewModerationService(store Store) *ModerationService {
	return &ModerationService{store: store}
}

// MuteAll ставит server_muted+muted всем joined-участникам, кроме хоста.
func (s *ModerationService) MuteAll(ctx context.Context, caller domain.Identity, roomID string) error {
	return s.setAllServerMuted(ctx, caller, roomID, true)
}

// UnmuteAll снимает и замок, и mute со всех, кроме хоста.
func (s *ModerationService) UnmuteAll(ctx context.Context, caller domain.Identity, roomID string) error {
	return s.setAllServerMuted(ctx, caller, roomID, false)
}

func (s *ModerationService) setAllServerMuted(ctx context.Context, caller domain.Identity, roomID string, locked bool) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		room, err := tx.Room(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Creator != caller {
			return domain.ErrNotHost
		}
		rows, err := tx.ParticipantsByRoom(ctx, roomID)
		if err != nil {
			return err
		}
		for i := range rows {
			p := &rows[i]
			if !p.Joined() || p.Identity == caller {
				continue
			}
			p.ServerMuted = locked
			p.Muted = locked
			if err := tx.UpdateParticipant(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetMediaState — self-service mute/deafen/cam. Хостовый замок сильнее:
// при server_muted запрошенный unmute не сохраняется.
func (s *ModerationService) SetMediaState(ctx context.Context, identity domain.Identity, roomID string, muted, deafened, camOff bool) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Room(ctx, roomID); err != nil {
			return err
		}
		p, err := tx.Participant(ctx, roomID, identity)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotParticipant
		}
		if !p.Joined() {
			return domain.ErrNotJoined
		}
		if p.ServerMuted {
			muted = true
		}
		p.Muted = muted
		p.Deafened = deafened
		p.CamOff = camOff
		return tx.UpdateParticipant(ctx, p)
	})
}

// SetServerMuted ставит или снимает хостовый замок на участнике.
// Установка замка принудительно ставит muted; снятие muted не трогает.
func (s *ModerationService) SetServerMuted(ctx context.Context, host domain.Identity, roomID string, target domain.Identity, locked bool) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		room, err := tx.Room(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Creator != host {
			return domain.ErrNotHost
		}
		if target == host {
			return domain.ErrSelfTarget
		}
		p, err := tx.Participant(ctx, roomID, target)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrTargetNotInRoom
		}
		if !p.Joined() {
			return domain.ErrNotJoined
		}
		p.ServerMuted = locked
		if locked {
			p.Muted = true
		}
		return tx.UpdateParticipant(ctx, p)
	})
}
