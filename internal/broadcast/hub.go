package broadcast

import (
	"sync"

	"github.com/cwrk-planet/call-service/internal/domain"
)

// Типы событий, уходящих подписчикам
const (
	TypeAudioFrame = "audio_frame"
	TypeVideoFrame = "video_frame"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub раздаёт кадровые события подписчикам комнаты. События транзитны:
// нет подписчика — событие пропало. Доставка best-effort, медленный
// подписчик с полным буфером события теряет, а не блокирует отправителя.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan Event]struct{} // roomID -> set of subscriber channels
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan Event]struct{})}
}

// Subscribe возвращает канал событий комнаты и функцию отписки.
func (h *Hub) Subscribe(roomID string, buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)

	h.mu.Lock()
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[chan Event]struct{})
		h.rooms[roomID] = rs
	}
	rs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if rs, ok := h.rooms[roomID]; ok {
			delete(rs, ch)
			if len(rs) == 0 {
				delete(h.rooms, roomID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) broadcast(roomID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for ch := range rs {
			select {
			case ch <- ev:
			default: // буфер полон
			}
		}
	}
}

func (h *Hub) EmitAudioFrame(ev domain.AudioFrameEvent) {
	h.broadcast(ev.RoomID, Event{Type: TypeAudioFrame, Payload: ev})
}

func (h *Hub) EmitVideoFrame(ev domain.VideoFrameEvent) {
	h.broadcast(ev.RoomID, Event{Type: TypeVideoFrame, Payload: ev})
}
