package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

// Singleton-запись: ровно одна строка с фиксированным id=1.
const settingsID = 1

func (t *pgTx) MediaSettings(ctx context.Context) (*domain.MediaSettings, error) {
	var s domain.MediaSettings
	query := `
		SELECT audio_target_sample_rate, audio_frame_ms, audio_max_frame_bytes, audio_talking_rms_threshold,
		       video_width, video_height, video_fps, video_jpeg_quality, video_max_frame_bytes, video_iframe_interval
		FROM media_settings WHERE id=$1`
	err := t.q.QueryRow(ctx, query, settingsID).Scan(
		&s.AudioTargetSampleRate, &s.AudioFrameMs, &s.AudioMaxFrameBytes, &s.AudioTalkingRMSThreshold,
		&s.VideoWidth, &s.VideoHeight, &s.VideoFPS, &s.VideoJPEGQuality, &s.VideoMaxFrameBytes, &s.VideoIFrameInterval,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (t *pgTx) SaveMediaSettings(ctx context.Context, s *domain.MediaSettings) error {
	query := `
		INSERT INTO media_settings
			(id, audio_target_sample_rate, audio_frame_ms, audio_max_frame_bytes, audio_talking_rms_threshold,
			 video_width, video_height, video_fps, video_jpeg_quality, video_max_frame_bytes, video_iframe_interval)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			audio_target_sample_rate = EXCLUDED.audio_target_sample_rate,
			audio_frame_ms = EXCLUDED.audio_frame_ms,
			audio_max_frame_bytes = EXCLUDED.audio_max_frame_bytes,
			audio_talking_rms_threshold = EXCLUDED.audio_talking_rms_threshold,
			video_width = EXCLUDED.video_width,
			video_height = EXCLUDED.video_height,
			video_fps = EXCLUDED.video_fps,
			video_jpeg_quality = EXCLUDED.video_jpeg_quality,
			video_max_frame_bytes = EXCLUDED.video_max_frame_bytes,
			video_iframe_interval = EXCLUDED.video_iframe_interval`
	_, err := t.q.Exec(ctx, query, settingsID,
		s.AudioTargetSampleRate, s.AudioFrameMs, s.AudioMaxFrameBytes, s.AudioTalkingRMSThreshold,
		s.VideoWidth, s.VideoHeight, s.VideoFPS, s.VideoJPEGQuality, s.VideoMaxFrameBytes, s.VideoIFrameInterval)
	return err
}
