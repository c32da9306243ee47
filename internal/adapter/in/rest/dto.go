package rest

import (
	"time"

	"flutter/internal/model"
)

type postResponse struct {
	ID      int64     `json:"id"`
	User    string    `json:"user"`
	Post    string    `json:"post"`
	Hashtag string    `json:"hashtag"`
	Likes   int64     `json:"likes"`
	Date    time.Time `json:"date"`
	Avatar  string    `json:"avatar"`
}

type postListResponse struct {
	Posts []postResponse `json:"posts"`
}

type avatarResponse struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type avatarListResponse struct {
	Avatars []avatarResponse `json:"avatars"`
	Default string           `json:"default"`
}

func toPostResponse(p model.Post) postResponse {
	return postResponse{
		ID:      p.ID,
		User:    p.User,
		Post:    p.Text,
		Hashtag: p.Hashtag,
		Likes:   p.Likes,
		Date:    p.CreatedAt.UTC(),
		Avatar:  string(p.Avatar),
	}
}

func toPostList(posts []model.Post) postListResponse {
	out := postListResponse{Posts: make([]postResponse, 0, len(posts))}
	for _, p := range posts {
		out.Posts = append(out.Posts, toPostResponse(p))
	}
	return out
}

func toAvatarList(avatars []model.Avatar) avatarListResponse {
	out := avatarListResponse{
		Avatars: make([]avatarResponse, 0, len(avatars)),
		Default: string(model.DefaultAvatar),
	}
	for _, a := range avatars {
		out.Avatars = append(out.Avatars, avatarResponse{Name: string(a), Image: a.ImagePath()})
	}
	return out
}
