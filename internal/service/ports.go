package service

import (
	"context"

	"github.com/cwrk-planet/call-service/internal/domain"
)

// Store исполняет fn как одну атомарную сериализуемую транзакцию.
// Конфликтные ретраи — забота реализации, сервисы их не видят.
// Ошибка из fn откатывает транзакцию целиком.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx — транзакционно-согласованный вид хранилища.
// Participant и User возвращают (nil, nil), если строки нет;
// Room возвращает domain.ErrRoomNotFound.
type Tx interface {
	Room(ctx context.Context, roomID string) (*domain.CallRoom, error)
	InsertRoom(ctx context.Context, room *domain.CallRoom) error
	// DeleteRoom удаляет комнату и каскадно все её строки участников.
	DeleteRoom(ctx context.Context, roomID string) error

	Participant(ctx context.Context, roomID string, identity domain.Identity) (*domain.CallParticipant, error)
	ParticipantsByRoom(ctx context.Context, roomID string) ([]domain.CallParticipant, error)
	ParticipantsByIdentity(ctx context.Context, identity domain.Identity) ([]domain.CallParticipant, error)
	InsertParticipant(ctx context.Context, p *domain.CallParticipant) error
	UpdateParticipant(ctx context.Context, p *domain.CallParticipant) error
	DeleteParticipant(ctx context.Context, participantID string) error

	MediaSettings(ctx context.Context) (*domain.MediaSettings, error)
	SaveMediaSettings(ctx context.Context, s *domain.MediaSettings) error

	User(ctx context.Context, identity domain.Identity) (*domain.User, error)
	UpsertUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, identity domain.Identity) error

	InsertMessage(ctx context.Context, m *domain.ChatMessage) error
	// MessagesBefore отдаёт сообщения строго раньше курсора (sent_at,id DESC);
	// nil-курсор — с самых свежих.
	MessagesBefore(ctx context.Context, before *Cursor, limit int) ([]domain.ChatMessage, error)
}

// PresenceDirectory — внешний каталог присутствия ("identity сейчас онлайн").
type PresenceDirectory interface {
	IsOnline(ctx context.Context, identity domain.Identity) (bool, error)
}

// EventSink принимает кадровые события для внешнего broadcast-слоя.
// Доставка best-effort, сбой доставки не проваливает операцию.
type EventSink interface {
	EmitAudioFrame(ev domain.AudioFrameEvent)
	EmitVideoFrame(ev domain.VideoFrameEvent)
}
