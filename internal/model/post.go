package model

import "time"

type Post struct {
	ID        int64
	User      string
	Text      string
	Hashtag   string
	Likes     int64
	CreatedAt time.Time
	Avatar    Avatar
}
