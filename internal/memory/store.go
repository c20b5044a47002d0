package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/service"
)

// Store — in-memory реализация service.Store. Один мьютекс на всё
// состояние даёт сериализуемость; атомарность — снапшот перед fn и
// откат при ошибке. Используется в тестах и как референс семантики.
type Store struct {
	mu sync.Mutex
	st state
}

type state struct {
	rooms        map[string]domain.CallRoom
	participants map[string]domain.CallParticipant // по id строки
	users        map[domain.Identity]domain.User
	settings     *domain.MediaSettings
	messages     []domain.ChatMessage
	nextMsgID    int64
}

func NewStore() *Store {
	return &Store{st: state{
		rooms:        make(map[string]domain.CallRoom),
		participants: make(map[string]domain.CallParticipant),
		users:        make(map[domain.Identity]domain.User),
		nextMsgID:    1,
	}}
}

func (s state) clone() state {
	out := state{
		rooms:        make(map[string]domain.CallRoom, len(s.rooms)),
		participants: make(map[string]domain.CallParticipant, len(s.participants)),
		users:        make(map[domain.Identity]domain.User, len(s.users)),
		messages:     append([]domain.ChatMessage(nil), s.messages...),
		nextMsgID:    s.nextMsgID,
	}
	for k, v := range s.rooms {
		out.rooms[k] = v
	}
	for k, v := range s.participants {
		out.participants[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	if s.settings != nil {
		cp := *s.settings
		out.settings = &cp
	}
	return out
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, &memTx{st: &s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type memTx struct {
	st *state
}

func (t *memTx) Room(_ context.Context, roomID string) (*domain.CallRoom, error) {
	r, ok := t.st.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := r
	return &cp, nil
}

func (t *memTx) InsertRoom(_ context.Context, room *domain.CallRoom) error {
	t.st.rooms[room.ID] = *room
	return nil
}

func (t *memTx) DeleteRoom(_ context.Context, roomID string) error {
	delete(t.st.rooms, roomID)
	for id, p := range t.st.participants {
		if p.RoomID == roomID {
			delete(t.st.participants, id)
		}
	}
	return nil
}

func (t *memTx) Participant(_ context.Context, roomID string, identity domain.Identity) (*domain.CallParticipant, error) {
	for _, p := range t.st.participants {
		if p.RoomID == roomID && p.Identity == identity {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) ParticipantsByRoom(_ context.Context, roomID string) ([]domain.CallParticipant, error) {
	var out []domain.CallParticipant
	for _, p := range t.st.participants {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sortParticipants(out)
	return out, nil
}

func (t *memTx) ParticipantsByIdentity(_ context.Context, identity domain.Identity) ([]domain.CallParticipant, error) {
	var out []domain.CallParticipant
	for _, p := range t.st.participants {
		if p.Identity == identity {
			out = append(out, p)
		}
	}
	sortParticipants(out)
	return out, nil
}

func sortParticipants(ps []domain.CallParticipant) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

func (t *memTx) InsertParticipant(_ context.Context, p *domain.CallParticipant) error {
	t.st.participants[p.ID] = *p
	return nil
}

func (t *memTx) UpdateParticipant(_ context.Context, p *domain.CallParticipant) error {
	t.st.participants[p.ID] = *p
	return nil
}

func (t *memTx) DeleteParticipant(_ context.Context, participantID string) error {
	delete(t.st.participants, participantID)
	return nil
}

func (t *memTx) MediaSettings(_ context.Context) (*domain.MediaSettings, error) {
	if t.st.settings == nil {
		return nil, nil
	}
	cp := *t.st.settings
	return &cp, nil
}

func (t *memTx) SaveMediaSettings(_ context.Context, s *domain.MediaSettings) error {
	cp := *s
	t.st.settings = &cp
	return nil
}

func (t *memTx) User(_ context.Context, identity domain.Identity) (*domain.User, error) {
	u, ok := t.st.users[identity]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func (t *memTx) UpsertUser(_ context.Context, u *domain.User) error {
	t.st.users[u.Identity] = *u
	return nil
}

func (t *memTx) DeleteUser(_ context.Context, identity domain.Identity) error {
	delete(t.st.users, identity)
	return nil
}

func (t *memTx) InsertMessage(_ context.Context, m *domain.ChatMessage) error {
	m.ID = t.st.nextMsgID
	t.st.nextMsgID++
	t.st.messages = append(t.st.messages, *m)
	return nil
}

func (t *memTx) MessagesBefore(_ context.Context, before *service.Cursor, limit int) ([]domain.ChatMessage, error) {
	msgs := append([]domain.ChatMessage(nil), t.st.messages...)
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.After(msgs[j].SentAt)
		}
		return msgs[i].ID > msgs[j].ID
	})

	out := make([]domain.ChatMessage, 0, limit)
	for _, m := range msgs {
		if before != nil {
			older := m.SentAt.Before(before.SentAt) ||
				(m.SentAt.Equal(before.SentAt) && m.ID < before.ID)
			if !older {
				continue
			}
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
