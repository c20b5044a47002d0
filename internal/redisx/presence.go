package redisx

import (
	"context"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Presence — внешний каталог присутствия. Ключи presence:<identity>
// ведёт auth-слой платформы с TTL; здесь только читаем.
type Presence struct {
	client *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

func (p *Presence) IsOnline(ctx context.Context, identity domain.Identity) (bool, error) {
	n, err := p.client.Exists(ctx, "presence:"+identity.String()).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
