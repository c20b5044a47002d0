package domain

// MediaSettings — singleton-конфигурация кодирования (ровно одна запись,
// id = 1). Меняется только через административный путь; гейт читает её
// в той же транзакции, что и проверки участника.
type MediaSettings struct {
	AudioTargetSampleRate    uint32  `db:"audio_target_sample_rate"`
	AudioFrameMs             uint16  `db:"audio_frame_ms"`
	AudioMaxFrameBytes       uint32  `db:"audio_max_frame_bytes"`
	AudioTalkingRMSThreshold float32 `db:"audio_talking_rms_threshold"`

	VideoWidth          uint16  `db:"video_width"`
	VideoHeight         uint16  `db:"video_height"`
	VideoFPS            uint8   `db:"video_fps"`
	VideoJPEGQuality    float32 `db:"video_jpeg_quality"`
	VideoMaxFrameBytes  uint32  `db:"video_max_frame_bytes"`
	VideoIFrameInterval uint8   `db:"video_iframe_interval"`
}

// DefaultMediaSettings — значения, которыми засевается singleton-запись.
func DefaultMediaSettings() MediaSettings {
	return MediaSettings{
		AudioTargetSampleRate:    16000,
		AudioFrameMs:             50,
		AudioMaxFrameBytes:       64000,
		AudioTalkingRMSThreshold: 0.02,

		VideoWidth:          320,
		VideoHeight:         180,
		VideoFPS:            5,
		VideoJPEGQuality:    0.55,
		VideoMaxFrameBytes:  512000,
		VideoIFrameInterval: 15,
	}
}
