package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/service"
)

// Админская поверхность: singleton-настройки медиа меняются только здесь,
// вне операций звонков.

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	mediaSvc *service.MediaService
	db       Pinger
}

func NewHandler(media *service.MediaService, db Pinger) *Handler {
	return &Handler{mediaSvc: media, db: db}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MediaSettingsDTO struct {
	AudioTargetSampleRate    uint32  `json:"audio_target_sample_rate"`
	AudioFrameMs             uint16  `json:"audio_frame_ms"`
	AudioMaxFrameBytes       uint32  `json:"audio_max_frame_bytes"`
	AudioTalkingRMSThreshold float32 `json:"audio_talking_rms_threshold"`
	VideoWidth               uint16  `json:"video_width"`
	VideoHeight              uint16  `json:"video_height"`
	VideoFPS                 uint8   `json:"video_fps"`
	VideoJPEGQuality         float32 `json:"video_jpeg_quality"`
	VideoMaxFrameBytes       uint32  `json:"video_max_frame_bytes"`
	VideoIFrameInterval      uint8   `json:"video_iframe_interval"`
}

func toDTO(s domain.MediaSettings) MediaSettingsDTO {
	return MediaSettingsDTO(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /admin/media-settings
func (h *Handler) GetMediaSettings(w http.ResponseWriter, r *http.Request) {
	set, err := h.mediaSvc.Settings(r.Context())
	if err != nil {
		slog.Error("handler.GetMediaSettings:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toDTO(set))
}

// PUT /admin/media-settings
func (h *Handler) PutMediaSettings(w http.ResponseWriter, r *http.Request) {
	var req MediaSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	err := h.mediaSvc.UpdateSettings(r.Context(), domain.MediaSettings(req))
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Kind == domain.KindValidation {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: de.Msg})
			return
		}
		slog.Error("handler.PutMediaSettings:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GET /readyz
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "db unavailable"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
