package service

import (
	"context"
	"strings"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"
)

type UserService struct {
	store Store
}

func NewUserService(store Store) *UserService {
	return &UserService{store: store}
}

const maxNicknameLen = 32

// Connected — регистрация при подключении: новая запись получает дефолтный
// никнейм user-<prefix>, существующая — свежий connected_at.
func (s *UserService) Connected(ctx context.Context, identity domain.Identity) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		now := time.Now()
		u, err := tx.User(ctx, identity)
		if err != nil {
			return err
		}
		if u == nil {
			u = &domain.User{Identity: identity, Nickname: "user-" + identity.Short()}
		}
		if u.Nickname == "" {
			u.Nickname = "user-" + identity.Short()
		}
		u.ConnectedAt = now
		return tx.UpsertUser(ctx, u)
	})
}

func (s *UserService) SetNickname(ctx context.Context, identity domain.Identity, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return domain.Validationf("nickname cannot be empty")
	}
	if len(nickname) > maxNicknameLen {
		return domain.Validationf("nickname must be <= %d characters", maxNicknameLen)
	}

	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		u, err := tx.User(ctx, identity)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		u.Nickname = nickname
		return tx.UpsertUser(ctx, u)
	})
}
