package domain

import "time"

type User struct {
	Identity    Identity  `db:"identity"`
	Nickname    string    `db:"nickname"`
	ConnectedAt time.Time `db:"connected_at"`
}
