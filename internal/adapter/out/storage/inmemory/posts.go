package inmemory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"flutter/internal/model"
	"flutter/internal/service"
)

type PostStorage struct {
	mu    sync.RWMutex
	posts []model.Post
	now   func() time.Time
}

func NewPostStorage() *PostStorage {
	return &PostStorage{
		// index 0 is a placeholder so ids map directly to slice positions
		posts: []model.Post{{}},
		now:   time.Now,
	}
}

func (s *PostStorage) CreatePost(_ context.Context, in model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = int64(len(s.posts))
	in.CreatedAt = s.now()
	s.posts = append(s.posts, in)
	return in, nil
}

func (s *PostStorage) GetPostByID(_ context.Context, postID int64) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if postID <= 0 || postID >= int64(len(s.posts)) {
		return model.Post{}, service.ErrNotFound
	}
	return s.posts[postID], nil
}

func (s *PostStorage) GetPosts(_ context.Context) ([]model.Post, error) {
	return s.filter(func(model.Post) bool { return true }), nil
}

func (s *PostStorage) GetTrendingPosts(_ context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = service.TrendingLimit
	}

	out := s.filter(func(model.Post) bool { return true })
	// out is newest first, a stable sort keeps that order among equal likes
	slices.SortStableFunc(out, func(a, b model.Post) int {
		return cmp.Compare(b.Likes, a.Likes)
	})
	return out[:min(limit, len(out))], nil
}

func (s *PostStorage) SearchPosts(_ context.Context, term string) ([]model.Post, error) {
	needle := strings.ToLower(term)
	return s.filter(func(p model.Post) bool {
		return strings.Contains(strings.ToLower(p.User), needle) ||
			strings.Contains(strings.ToLower(p.Text), needle) ||
			strings.Contains(strings.ToLower(p.Hashtag), needle)
	}), nil
}

func (s *PostStorage) GetPostsByUser(_ context.Context, user string) ([]model.Post, error) {
	return s.filter(func(p model.Post) bool { return p.User == user }), nil
}

func (s *PostStorage) IncrementLikes(_ context.Context, postID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if postID <= 0 || postID >= int64(len(s.posts)) {
		return 0, service.ErrNotFound
	}
	s.posts[postID].Likes++
	return s.posts[postID].Likes, nil
}

// filter returns the matching posts newest first. Ids grow with creation time,
// so walking the slice backwards is enough.
func (s *PostStorage) filter(keep func(model.Post) bool) []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Post, 0)
	for id := len(s.posts) - 1; id >= 1; id-- {
		if p := s.posts[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}
