package redisx

import (
	"context"
	"log/slog"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Канал подключений и канал потерь присутствия; payload — identity.
const (
	DefaultOnlineChannel  = "presence:connected"
	DefaultOfflineChannel = "presence:disconnected"
)

type ConnectHandler interface {
	Connected(ctx context.Context, identity domain.Identity) error
}

type DisconnectHandler interface {
	PresenceLost(ctx context.Context, identity domain.Identity) error
}

// Listener переводит pub/sub-уведомления каталога присутствия в вызовы
// сервисов. Очистка по потере присутствия безусловна: ошибка логируется
// и не прерывает обработку остальных уведомлений.
type Listener struct {
	client  *redis.Client
	online  string
	offline string

	onConnect    ConnectHandler
	onDisconnect DisconnectHandler
}

func NewListener(client *redis.Client, online, offline string, onConnect ConnectHandler, onDisconnect DisconnectHandler) *Listener {
	if online == "" {
		online = DefaultOnlineChannel
	}
	if offline == "" {
		offline = DefaultOfflineChannel
	}
	return &Listener{
		client:       client,
		online:       online,
		offline:      offline,
		onConnect:    onConnect,
		onDisconnect: onDisconnect,
	}
}

// Run блокируется до отмены ctx.
func (l *Listener) Run(ctx context.Context) error {
	sub := l.client.Subscribe(ctx, l.online, l.offline)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.handle(ctx, msg)
		}
	}
}

func (l *Listener) handle(ctx context.Context, msg *redis.Message) {
	identity := domain.Identity(msg.Payload)
	if identity == "" {
		return
	}

	switch msg.Channel {
	case l.online:
		if err := l.onConnect.Connected(ctx, identity); err != nil {
			slog.Error("presence connect handling failed", "identity", identity, "err", err)
		}
	case l.offline:
		if err := l.onDisconnect.PresenceLost(ctx, identity); err != nil {
			slog.Error("presence-loss cleanup failed", "identity", identity, "err", err)
		}
	}
}
