package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flutter/internal/model"
	"flutter/pkg/hashtag"
)

// TrendingLimit is how many posts the trending view holds.
const TrendingLimit = 5

//go:generate mockgen -source=posts.go -destination=./post_storage_mock.go -package=service flutter/internal/service PostStorage
type PostStorage interface {
	CreatePost(ctx context.Context, post model.Post) (model.Post, error)
	GetPostByID(ctx context.Context, postID int64) (model.Post, error)
	GetPosts(ctx context.Context) ([]model.Post, error)
	GetTrendingPosts(ctx context.Context, limit int) ([]model.Post, error)
	SearchPosts(ctx context.Context, term string) ([]model.Post, error)
	GetPostsByUser(ctx context.Context, user string) ([]model.Post, error)
	IncrementLikes(ctx context.Context, postID int64) (int64, error)
}

type PostService struct {
	postStorage PostStorage
}

func NewPostService(postStorage PostStorage) *PostService {
	return &PostService{
		postStorage: postStorage,
	}
}

// CreatePost splits the trailing hashtag off the body and stores a post with no
// likes. The returned post carries the id and date assigned by the storage.
func (s *PostService) CreatePost(ctx context.Context, req CreatePostRequest) (model.Post, error) {
	if err := validateCreatePost(req); err != nil {
		return model.Post{}, err
	}

	msg, tag := hashtag.Parse(req.Post)
	p, err := s.postStorage.CreatePost(ctx, model.Post{
		User:    req.User,
		Text:    msg,
		Hashtag: tag,
		Likes:   0,
		Avatar:  model.Avatar(req.Avatar),
	})
	if err != nil {
		return model.Post{}, storageErr(err, nil)
	}
	return p, nil
}

func (s *PostService) GetPostByID(ctx context.Context, postID int64) (model.Post, error) {
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("postID must be > 0: %w", ErrInvalidRequest)
	}
	p, err := s.postStorage.GetPostByID(ctx, postID)
	if err != nil {
		return model.Post{}, storageErr(err, ErrPostNotFound)
	}
	return p, nil
}

// GetPosts returns every post, newest first.
func (s *PostService) GetPosts(ctx context.Context) ([]model.Post, error) {
	return wrapList(s.postStorage.GetPosts(ctx))
}

// GetTrendingPosts returns the most liked posts. Equal like counts keep the
// newer post first.
func (s *PostService) GetTrendingPosts(ctx context.Context) ([]model.Post, error) {
	return wrapList(s.postStorage.GetTrendingPosts(ctx, TrendingLimit))
}

// SearchPosts returns the posts whose author, message or hashtag contains term,
// ignoring case.
func (s *PostService) SearchPosts(ctx context.Context, term string) ([]model.Post, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term is empty: %w", ErrInvalidRequest)
	}
	return wrapList(s.postStorage.SearchPosts(ctx, term))
}

func (s *PostService) GetUserPosts(ctx context.Context, user string) ([]model.Post, error) {
	if user == "" {
		return nil, fmt.Errorf("user is empty: %w", ErrInvalidRequest)
	}
	posts, err := s.postStorage.GetPostsByUser(ctx, user)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, user)
	}
	return posts, nil
}

// LikePost adds one like and returns the new total.
func (s *PostService) LikePost(ctx context.Context, postID int64) (int64, error) {
	if postID <= 0 {
		return 0, fmt.Errorf("postID must be > 0: %w", ErrInvalidRequest)
	}
	likes, err := s.postStorage.IncrementLikes(ctx, postID)
	if err != nil {
		return 0, storageErr(err, ErrPostNotFound)
	}
	return likes, nil
}

// storageErr maps a storage failure to a service error. A missing record becomes
// notFound when one is given, anything else is an internal error.
func storageErr(err, notFound error) error {
	if notFound != nil && errors.Is(err, ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%w: %w", ErrInternalError, err)
}

func wrapList(posts []model.Post, err error) ([]model.Post, error) {
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return posts, nil
}
