package service

import (
	"context"
	"strings"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"
)

// Глобальный чат: простые валидируемые вставки, без инвариантной логики.
type ChatService struct {
	store Store
}

func NewChatService(store Store) *ChatService {
	return &ChatService{store: store}
}

const maxMessageLen = 500

func (s *ChatService) SendMessage(ctx context.Context, sender domain.Identity, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validationf("message cannot be empty")
	}
	if len(text) > maxMessageLen {
		return nil, domain.Validationf("message must be <= %d characters", maxMessageLen)
	}

	m := &domain.ChatMessage{
		Sender: sender,
		Text:   text,
		SentAt: time.Now(),
	}
	err := s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertMessage(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// History — курсорная пагинация (sent_at,id DESC), свежие первыми.
func (s *ChatService) History(ctx context.Context, after string, limit int) ([]domain.ChatMessage, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", err
	}

	var out []domain.ChatMessage
	err = s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		out, err = tx.MessagesBefore(ctx, cur, limit)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{SentAt: last.SentAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}
