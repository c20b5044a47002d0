package service

import (
	"context"

	"github.com/cwrk-planet/call-service/internal/domain"
)

// MediaService — пер-кадровый гейт: проверка участника, mute/cam-флагов
// и размера против живой singleton-записи настроек. Успешный кадр уходит
// событием во внешний sink; сами события в хранилище не остаются.
type MediaService struct {
	store Store
	sink  EventSink
}

func NewMediaService(store Store, sink EventSink) *MediaService {
	return &MediaService{store: store, sink: sink}
}

func settingsOrDefault(ctx context.Context, tx Tx) (domain.MediaSettings, error) {
	set, err := tx.MediaSettings(ctx)
	if err != nil {
		return domain.MediaSettings{}, err
	}
	if set == nil {
		return domain.DefaultMediaSettings(), nil
	}
	return *set, nil
}

// SendAudioFrame. Muted или server_muted участник получает успех без
// события — тихий дроп, не ошибка: первичный гейтинг на отправителе.
func (s *MediaService) SendAudioFrame(ctx context.Context, identity domain.Identity, roomID string, seq uint32, sampleRate uint32, channels uint8, rms float32, payload []byte) error {
	var ev *domain.AudioFrameEvent

	err := s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
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
		if p.Muted || p.ServerMuted {
			return nil
		}

		set, err := settingsOrDefault(ctx, tx)
		if err != nil {
			return err
		}
		if len(payload) > int(set.AudioMaxFrameBytes) {
			return domain.Validationf("audio frame too large: %d > %d bytes", len(payload), set.AudioMaxFrameBytes)
		}

		ev = &domain.AudioFrameEvent{
			RoomID:     roomID,
			From:       identity,
			Seq:        seq,
			SampleRate: sampleRate,
			Channels:   channels,
			RMS:        rms,
			PCM16LE:    payload,
		}
		return nil
	})
	if err != nil {
		return err
	}
	if ev != nil {
		s.sink.EmitAudioFrame(*ev)
	}
	return nil
}

// SendVideoFrame. Тип комнаты проверяется раньше статуса участника:
// в voice-комнате видеокадр — всегда ошибка состояния.
func (s *MediaService) SendVideoFrame(ctx context.Context, identity domain.Identity, roomID string, seq uint32, width, height uint16, isIFrame bool, payload []byte) error {
	var ev *domain.VideoFrameEvent

	err := s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		room, err := tx.Room(ctx, roomID)
		if err != nil {
			return err
		}
		if room.CallType != domain.CallVideo {
			return domain.ErrNotVideoCall
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
		if p.CamOff {
			return nil
		}

		set, err := settingsOrDefault(ctx, tx)
		if err != nil {
			return err
		}
		if len(payload) > int(set.VideoMaxFrameBytes) {
			return domain.Validationf("video frame too large: %d > %d bytes", len(payload), set.VideoMaxFrameBytes)
		}

		ev = &domain.VideoFrameEvent{
			RoomID:   roomID,
			From:     identity,
			Seq:      seq,
			Width:    width,
			Height:   height,
			IsIFrame: isIFrame,
			JPEG:     payload,
		}
		return nil
	})
	if err != nil {
		return err
	}
	if ev != nil {
		s.sink.EmitVideoFrame(*ev)
	}
	return nil
}

// Settings возвращает живую singleton-запись настроек.
func (s *MediaService) Settings(ctx context.Context) (domain.MediaSettings, error) {
	var out domain.MediaSettings
	err := s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		set, err := settingsOrDefault(ctx, tx)
		if err != nil {
			return err
		}
		out = set
		return nil
	})
	return out, err
}

// UpdateSettings — административный путь, вне поверхности звонков.
func (s *MediaService) UpdateSettings(ctx context.Context, set domain.MediaSettings) error {
	if set.AudioTargetSampleRate == 0 || set.AudioFrameMs == 0 || set.AudioMaxFrameBytes == 0 {
		return domain.Validationf("audio settings must be positive")
	}
	if set.AudioTalkingRMSThreshold < 0 {
		return domain.Validationf("audio rms threshold must not be negative")
	}
	if set.VideoWidth == 0 || set.VideoHeight == 0 || set.VideoFPS == 0 || set.VideoMaxFrameBytes == 0 || set.VideoIFrameInterval == 0 {
		return domain.Validationf("video settings must be positive")
	}
	if set.VideoJPEGQuality <= 0 || set.VideoJPEGQuality > 1 {
		return domain.Validationf("video jpeg quality must be in (0, 1]")
	}
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		return tx.SaveMediaSettings(ctx, &set)
	})
}

// EnsureDefaults засевает singleton-запись, если её ещё нет.
func (s *MediaService) EnsureDefaults(ctx context.Context) error {
	return s.store.Atomic(ctx, func(ctx context.Context, tx Tx) error {
		set, err := tx.MediaSettings(ctx)
		if err != nil {
			return err
		}
		if set != nil {
			return nil
		}
		def := domain.DefaultMediaSettings()
		return tx.SaveMediaSettings(ctx, &def)
	})
}
