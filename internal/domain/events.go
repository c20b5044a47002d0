package domain

// Транзитные broadcast-события: добавляются и отдаются внешнему слою
// доставки, в хранилище не задерживаются.

type AudioFrameEvent struct {
	RoomID     string   `json:"room_id"`
	From       Identity `json:"from"`
	Seq        uint32   `json:"seq"`
	SampleRate uint32   `json:"sample_rate"`
	Channels   uint8    `json:"channels"`
	RMS        float32  `json:"rms"`
	PCM16LE    []byte   `json:"pcm16le"`
}

type VideoFrameEvent struct {
	RoomID   string   `json:"room_id"`
	From     Identity `json:"from"`
	Seq      uint32   `json:"seq"`
	Width    uint16   `json:"width"`
	Height   uint16   `json:"height"`
	IsIFrame bool     `json:"is_iframe"`
	JPEG     []byte   `json:"jpeg"`
}
