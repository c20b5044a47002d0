package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MaxInviteTargets — предел приглашений при создании комнаты.
const MaxInviteTargets = 15

type CallService struct {
	store    Store
	presence PresenceDirectory
}

func NewCallService(store Store, presence PresenceDirectory) *CallService {
	return &CallService{store: store, presence: presence}
}

// newID — uuid v7, при сбое v4; если не вышло и так — ResourceError.
func newID() (string, error) {
	if id, err := uuid.NewV7(); err == nil {
		return id.String(), nil
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", domain.ErrIDGeneration
	}
	return id.String(), nil
}

// requireFree — у identity нет ни одной joined-строки во всём хранилище.
func requireFree(ctx context.Context, tx Tx, identity domain.Identity) error {
	rows, err := tx.ParticipantsByIdentity(ctx, identity)
	if err != nil {
		return err
	}
	for _, p := range rows {
		if p.Joined() {
			return domain.ErrBusyInCall
		}
	}
	return nil
}

func (s *CallService) requireOnline(ctx context.Context, identity domain.Identity) error {
	online, err := s.presence.IsOnline(ctx, identity)
	if err != nil {
		return fmt.Errorf("presence.IsOnline: %w", err)
	}
	if !online {
		return domain.ErrTargetOffline
	}
	return nil
}

// CreateRoom создаёт комнату: создатель сразу joined, все цели — invited.
// Всё в одной транзакции: либо комната со всеми строками, либо ничего.
func (s *CallService) CreateRoom(ctx context.Context, creator domain.Identity, targets []domain.Identity, callType domain.CallType) (string, error) {
	if !callType.Valid() {
		return "", domain.Validationf("unknown call type %q", callType)
	}
	if len(targets) == 0 {
		return "", domain.Validationf("at least one target is required")
	}
	if len(targets) > MaxInviteTargets {
		return "", domain.Validationf("at most %d targets allowed", MaxInviteTargets)
	}
	if len(lo.Uniq(targets)) != len(targets) {
		return "", domain.Validationf("targets must be distinct")
	}
	if lo.Contains(targets, creator) {
		return "", domain.Validationf("creator cannot be a target")
	}

	for _, t := range targets {
		if err := s.requireOnline(ctx, t); err != nil {
			return "", err
		}
	}

	roomID, err := newID()
	if err != nil {
		return "", err
	}
	now := time.Now()

	err = s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		if err := requireFree(ctx, tx, creator); err != nil {
			return err
		}
		for _, t := range targets {
			if err := requireFree(ctx, tx, t); err != nil {
				return err
			}
		}

		if err := tx.InsertRoom(ctx, &domain.CallRoom{
			ID:        roomID,
			CallType:  callType,
			Creator:   creator,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		pid, err := newID()
		if err != nil {
			return err
		}
		joinedAt := now
		if err := tx.InsertParticipant(ctx, &domain.CallParticipant{
			ID:        pid,
			RoomID:    roomID,
			Identity:  creator,
			State:     domain.StateJoined,
			InvitedBy: creator,
			JoinedAt:  &joinedAt,
		}); err != nil {
			return err
		}

		for _, t := range targets {
			pid, err := newID()
			if err != nil {
				return err
			}
			if err := tx.InsertParticipant(ctx, &domain.CallParticipant{
				ID:        pid,
				RoomID:    roomID,
				Identity:  t,
				State:     domain.StateInvited,
				InvitedBy: creator,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return roomID, nil
}

// InviteToRoom добавляет invited-строку; приглашать может только joined-участник.
func (s *CallService) InviteToRoom(ctx context.Context, inviter domain.Identity, roomID string, target domain.Identity) error {
	if err := s.requireOnline(ctx, target); err != nil {
		return err
	}

	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Room(ctx, roomID); err != nil {
			return err
		}
		inv, err := tx.Participant(ctx, roomID, inviter)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotParticipant
		}
		if !inv.Joined() {
			return domain.ErrNotJoined
		}

		existing, err := tx.Participant(ctx, roomID, target)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyInRoom
		}
		if err := requireFree(ctx, tx, target); err != nil {
			return err
		}

		pid, err := newID()
		if err != nil {
			return err
		}
		return tx.InsertParticipant(ctx, &domain.CallParticipant{
			ID:        pid,
			RoomID:    roomID,
			Identity:  target,
			State:     domain.StateInvited,
			InvitedBy: inviter,
		})
	})
}

// JoinRoom переводит существующее приглашение в joined.
func (s *CallService) JoinRoom(ctx context.Context, identity domain.Identity, roomID string) error {
	if err := s.requireOnline(ctx, identity); err != nil {
		return err
	}

	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Room(ctx, roomID); err != nil {
			return err
		}
		p, err := tx.Participant(ctx, roomID, identity)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotInvited
		}
		if p.Joined() {
			return domain.ErrAlreadyJoined
		}
		// joined где-то ещё — нельзя, активный звонок один на identity
		if err := requireFree(ctx, tx, identity); err != nil {
			return err
		}

		now := time.Now()
		p.State = domain.StateJoined
		p.JoinedAt = &now
		return tx.UpdateParticipant(ctx, p)
	})
}

// DeclineInvite удаляет invited-строку. Joined-строка так не снимается —
// для этого leave; очистка не нужна, invited не держит комнату.
func (s *CallService) DeclineInvite(ctx context.Context, identity domain.Identity, roomID string) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.Participant(ctx, roomID, identity)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotInvited
		}
		if p.Joined() {
			return domain.ErrAlreadyJoined
		}
		return tx.DeleteParticipant(ctx, p.ID)
	})
}

// LeaveRoom удаляет строку участника и запускает каскадную очистку.
func (s *CallService) LeaveRoom(ctx context.Context, identity domain.Identity, roomID string) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		p, err := tx.Participant(ctx, roomID, identity)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotParticipant
		}
		if err := tx.DeleteParticipant(ctx, p.ID); err != nil {
			return err
		}
		return cleanupIfEmpty(ctx, tx, roomID)
	})
}

// KickParticipant — только создатель комнаты, себя кикнуть нельзя.
func (s *CallService) KickParticipant(ctx context.Context, host domain.Identity, roomID string, target domain.Identity) error {
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
		if err := tx.DeleteParticipant(ctx, p.ID); err != nil {
			return err
		}
		return cleanupIfEmpty(ctx, tx, roomID)
	})
}

// PresenceLost — безусловная очистка после ухода identity в offline:
// удаляются строка пользователя и все его строки участия; комнаты, где
// он был joined, проходят через каскадную очистку.
func (s *CallService) PresenceLost(ctx context.Context, identity domain.Identity) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.DeleteUser(ctx, identity); err != nil {
			return err
		}
		rows, err := tx.ParticipantsByIdentity(ctx, identity)
		if err != nil {
			return err
		}
		var joinedRooms []string
		for _, p := range rows {
			if err := tx.DeleteParticipant(ctx, p.ID); err != nil {
				return err
			}
			if p.Joined() {
				joinedRooms = append(joinedRooms, p.RoomID)
			}
		}
		for _, roomID := range joinedRooms {
			if err := cleanupIfEmpty(ctx, tx, roomID); err != nil {
				return err
			}
		}
		return nil
	})
}

// cleanupIfEmpty — идемпотентная каскадная очистка: комната без единой
// joined-строки удаляется вместе с остаточными приглашениями.
func cleanupIfEmpty(ctx context.Context, tx Tx, roomID string) error {
	rows, err := tx.ParticipantsByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	for _, p := range rows {
		if p.Joined() {
			return nil
		}
	}
	if _, err := tx.Room(ctx, roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil // уже очищено
		}
		return err
	}
	return tx.DeleteRoom(ctx, roomID)
}
