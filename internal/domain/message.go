package domain

import "time"

type ChatMessage struct {
	ID     int64     `db:"id"`
	Sender Identity  `db:"sender"`
	Text   string    `db:"text"`
	SentAt time.Time `db:"sent_at"`
}
